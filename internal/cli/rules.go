package cli

import (
	"fmt"
	"github.com/Avi18971911/Insights/internal/config"
	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	var rules string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Validate span type rules and list the enabled span types in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.NewClassifier(&config.Config{SpanTypesFile: rules})
			if err != nil {
				return err
			}
			for _, spanType := range c.EnabledSpanTypes() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), spanType); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rules, "rules", "", "TOML span type rules, defaults to the built-in rules")
	return cmd
}
