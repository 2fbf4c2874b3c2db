package service_insights

import (
	"context"
	"fmt"
	"github.com/Avi18971911/Insights/internal/service_insights/model"
	"github.com/Avi18971911/Insights/internal/service_insights/service"
	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
	"time"
)

type SearchParams struct {
	ServiceName string
	From        time.Time
	To          time.Time
}

type ServiceInsightsQueryService interface {
	// GetServiceInsights returns the dependency graph around a service. Results are shared between
	// callers and must not be modified.
	GetServiceInsights(ctx context.Context, params SearchParams) (model.ServiceInsights, error)
}

type ServiceInsightsService struct {
	fetcher   SpanFetcher
	extractor service.GraphExtractor
	cache     *ristretto.Cache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

func NewServiceInsightsService(
	fetcher SpanFetcher,
	extractor service.GraphExtractor,
	cache *ristretto.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *ServiceInsightsService {
	return &ServiceInsightsService{
		fetcher:   fetcher,
		extractor: extractor,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// NewInsightsCache sizes a cache holding up to maxCost graphs.
func NewInsightsCache(maxCost int64) (*ristretto.Cache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxCost * 10,
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create service insights cache: %w", err)
	}
	return cache, nil
}

func (sis *ServiceInsightsService) GetServiceInsights(
	ctx context.Context,
	params SearchParams,
) (model.ServiceInsights, error) {
	key := cacheKey(params)
	if cached, found := sis.cache.Get(key); found {
		if insights, ok := cached.(model.ServiceInsights); ok {
			sis.logger.Debug("Service insights served from cache", zap.String("cache_key", key))
			return insights, nil
		}
		sis.logger.Warn("Unexpected value type in service insights cache", zap.String("cache_key", key))
	}

	spans, err := sis.fetcher.FetchSpans(ctx, params.ServiceName, params.From, params.To)
	if err != nil {
		return model.ServiceInsights{}, fmt.Errorf("failed to fetch spans for %s: %w", params.ServiceName, err)
	}

	insights := sis.extractor.ExtractGraph(spans, params.ServiceName)

	if !sis.cache.SetWithTTL(key, insights, 1, sis.cacheTTL) {
		sis.logger.Debug("Service insights were not admitted to the cache", zap.String("cache_key", key))
	}
	return insights, nil
}

func cacheKey(params SearchParams) string {
	return fmt.Sprintf("%s|%d|%d", params.ServiceName, params.From.UnixMilli(), params.To.UnixMilli())
}
