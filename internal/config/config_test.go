package config

import (
	"github.com/Avi18971911/Insights/internal/service_insights/classifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("should use defaults when nothing is set", func(t *testing.T) {
		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, []string{"http://localhost:9200"}, cfg.ElasticsearchAddresses)
		assert.Equal(t, ":8081", cfg.QueryServerAddress)
		assert.Equal(t, ":4317", cfg.OtelServerAddress)
		assert.Equal(t, "", cfg.SpanTypesFile)
		assert.Equal(t, time.Minute, cfg.CacheTTL)
		assert.Equal(t, int64(1000), cfg.CacheMaxCost)
		assert.Equal(t, 10000, cfg.FetchSize)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("should read prefixed environment variables", func(t *testing.T) {
		t.Setenv("INSIGHTS_ELASTICSEARCH_ADDRESSES", "http://es-1:9200,http://es-2:9200")
		t.Setenv("INSIGHTS_CACHE_TTL", "30s")
		t.Setenv("INSIGHTS_FETCH_SIZE", "500")
		t.Setenv("INSIGHTS_LOG_LEVEL", "debug")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, []string{"http://es-1:9200", "http://es-2:9200"}, cfg.ElasticsearchAddresses)
		assert.Equal(t, 30*time.Second, cfg.CacheTTL)
		assert.Equal(t, 500, cfg.FetchSize)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("should reject values that cannot be parsed", func(t *testing.T) {
		t.Setenv("INSIGHTS_CACHE_TTL", "soon")

		_, err := Load()

		assert.Error(t, err)
	})

	t.Run("should reject a non positive fetch size", func(t *testing.T) {
		t.Setenv("INSIGHTS_FETCH_SIZE", "0")

		_, err := Load()

		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("should honour the configured level", func(t *testing.T) {
		logger, err := NewLogger(&Config{LogLevel: "warn"})

		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zap.InfoLevel))
		assert.True(t, logger.Core().Enabled(zap.WarnLevel))
	})

	t.Run("should reject an unknown level", func(t *testing.T) {
		_, err := NewLogger(&Config{LogLevel: "loud"})

		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestNewClassifier(t *testing.T) {
	t.Run("should fall back to the default rules", func(t *testing.T) {
		c, err := NewClassifier(&Config{})

		require.NoError(t, err)
		assert.Equal(
			t,
			[]classifier.SpanType{
				classifier.Edge,
				classifier.Gateway,
				classifier.Mesh,
				classifier.Database,
				classifier.Outbound,
				classifier.Service,
			},
			c.EnabledSpanTypes(),
		)
	})

	t.Run("should load rules from the span types file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "span_types.toml")
		rules := `
[database]
has_tag = "db.type"
node_id = { field = "operation_name" }
node_name = { field = "operation_name" }

[service]
node_id = { field = "service_name" }
node_name = { field = "service_name" }
`
		require.NoError(t, os.WriteFile(path, []byte(rules), 0o600))

		c, err := NewClassifier(&Config{SpanTypesFile: path})

		require.NoError(t, err)
		assert.Equal(t, []classifier.SpanType{classifier.Database, classifier.Service}, c.EnabledSpanTypes())
	})

	t.Run("should fail when the span types file is missing", func(t *testing.T) {
		_, err := NewClassifier(&Config{SpanTypesFile: filepath.Join(t.TempDir(), "missing.toml")})

		assert.Error(t, err)
	})
}
