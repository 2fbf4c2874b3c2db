package config

import (
	"errors"
	"fmt"
	"github.com/Avi18971911/Insights/internal/service_insights/classifier"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"time"
)

const envPrefix = "INSIGHTS"

// Config is read from INSIGHTS_ prefixed environment variables.
type Config struct {
	ElasticsearchAddresses []string `envconfig:"ELASTICSEARCH_ADDRESSES" default:"http://localhost:9200"`
	QueryServerAddress     string   `envconfig:"QUERY_SERVER_ADDRESS" default:":8081"`
	OtelServerAddress      string   `envconfig:"OTEL_SERVER_ADDRESS" default:":4317"`

	// Empty means the built-in span type rules.
	SpanTypesFile string `envconfig:"SPAN_TYPES_FILE"`

	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"1m"`
	CacheMaxCost int64         `envconfig:"CACHE_MAX_COST" default:"1000"`
	FetchSize    int           `envconfig:"FETCH_SIZE" default:"10000"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}
	if cfg.FetchSize <= 0 {
		return nil, fmt.Errorf("%w: fetch size must be positive, got %d", ErrInvalidConfig, cfg.FetchSize)
	}
	if cfg.CacheMaxCost <= 0 {
		return nil, fmt.Errorf("%w: cache max cost must be positive, got %d", ErrInvalidConfig, cfg.CacheMaxCost)
	}
	return cfg, nil
}

func NewLogger(cfg *Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: log level %q: %v", ErrInvalidConfig, cfg.LogLevel, err)
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = level
	return zapConfig.Build()
}

// NewClassifier uses the rules of SpanTypesFile when set and the default rules otherwise.
func NewClassifier(cfg *Config) (*classifier.Classifier, error) {
	rules := classifier.DefaultRules()
	if cfg.SpanTypesFile != "" {
		fileRules, err := classifier.LoadRules(cfg.SpanTypesFile)
		if err != nil {
			return nil, err
		}
		rules = fileRules
	}
	c, err := classifier.NewClassifier(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create span classifier: %w", err)
	}
	return c, nil
}

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)
