package main

import (
	"github.com/Avi18971911/Insights/internal/config"
	"github.com/Avi18971911/Insights/internal/db/elasticsearch/bootstrapper"
	"github.com/Avi18971911/Insights/internal/db/elasticsearch/client"
	"github.com/Avi18971911/Insights/internal/query_server/router"
	serviceInsights "github.com/Avi18971911/Insights/internal/query_server/service/service_insights"
	"github.com/Avi18971911/Insights/internal/service_insights/service"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
	"log"
	"net/http"
)

// @title Insights API
// @version 1.0
// @description Service dependency graphs built from distributed traces.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	c, err := config.NewClassifier(cfg)
	if err != nil {
		logger.Fatal("Failed to load span type rules", zap.Error(err))
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.ElasticsearchAddresses})
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}

	bs := bootstrapper.NewBootstrapper(es, logger)
	err = bs.BootstrapElasticsearch()
	if err != nil {
		logger.Fatal("Failed to bootstrap elasticsearch", zap.Error(err))
	}

	cache, err := serviceInsights.NewInsightsCache(cfg.CacheMaxCost)
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}
	defer cache.Close()

	ac := client.NewInsightsClientImpl(es, client.Wait)
	fetcher := serviceInsights.NewSpanFetcherImpl(ac, cfg.FetchSize, logger)
	extractor := service.NewGraphExtractor(c, logger)
	sis := serviceInsights.NewServiceInsightsService(fetcher, extractor, cache, cfg.CacheTTL, logger)

	r := router.CreateRouter(sis, logger)
	logger.Info("Starting query server", zap.String("address", cfg.QueryServerAddress))
	if err := http.ListenAndServe(cfg.QueryServerAddress, r); err != nil {
		logger.Fatal("Failed to serve", zap.Error(err))
	}
}
