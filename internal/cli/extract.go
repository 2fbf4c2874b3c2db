package cli

import (
	"encoding/json"
	"errors"
	"github.com/Avi18971911/Insights/internal/config"
	"github.com/Avi18971911/Insights/internal/query_server/handler"
	"github.com/Avi18971911/Insights/internal/service_insights/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type extractOpts struct {
	spans   string
	service string
	rules   string
	pretty  bool
}

func newExtractCmd() *cobra.Command {
	opts := extractOpts{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Build the dependency graph of a span file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.spans, "spans", "", "JSON file holding an array of spans")
	cmd.Flags().StringVar(&opts.service, "service", "", "service at the center of the graph")
	cmd.Flags().StringVar(&opts.rules, "rules", "", "TOML span type rules, defaults to the built-in rules")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent the output")
	_ = cmd.MarkFlagRequired("spans")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}

func runExtract(cmd *cobra.Command, opts extractOpts) error {
	logger := loggerFromContext(cmd.Context())
	if opts.service == "" {
		return ErrNoServiceName
	}

	c, err := config.NewClassifier(&config.Config{SpanTypesFile: opts.rules})
	if err != nil {
		return err
	}

	spans, err := readSpanFile(opts.spans)
	if err != nil {
		return err
	}
	logger.Debug("Read spans", zap.String("file", opts.spans), zap.Int("spans", len(spans)))

	insights := service.NewGraphExtractor(c, logger).ExtractGraph(spans, opts.service)

	encoder := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(handler.MapServiceInsightsToDTO(insights))
}

var (
	ErrNoServiceName = errors.New("service name must not be empty")
)
