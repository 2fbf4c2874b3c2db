package main

import (
	"context"
	"github.com/Avi18971911/Insights/internal/config"
	"github.com/Avi18971911/Insights/internal/db/elasticsearch/bootstrapper"
	"github.com/Avi18971911/Insights/internal/db/elasticsearch/client"
	"github.com/Avi18971911/Insights/internal/db/write_buffer"
	traceModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	traceServer "github.com/Avi18971911/Insights/internal/otel_server/trace/server"
	"github.com/Avi18971911/Insights/internal/pipeline/event_bus"
	"github.com/Avi18971911/Insights/internal/pipeline/ingest"
	"github.com/asaskevich/EventBus"
	"github.com/elastic/go-elasticsearch/v8"
	protoTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	_ "google.golang.org/grpc/encoding/gzip"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

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

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.ElasticsearchAddresses})
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}

	bs := bootstrapper.NewBootstrapper(es, logger)
	err = bs.BootstrapElasticsearch()
	if err != nil {
		logger.Fatal("Failed to bootstrap elasticsearch", zap.Error(err))
	}

	listener, err := net.Listen("tcp", cfg.OtelServerAddress)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("address", cfg.OtelServerAddress), zap.Error(err))
	}

	ac := client.NewInsightsClientImpl(es, client.Async)
	spanBus := event_bus.NewInsightsEventBus[[]traceModel.Span, []traceModel.Span](
		EventBus.New(),
		logger,
	)
	traceDBBuffer := write_buffer.NewDatabaseWriteBufferImpl[traceModel.Span](
		ac,
		bootstrapper.SpanIndexName,
		logger,
	)

	ingestPipeline := ingest.NewSpanIngestPipeline(spanBus, traceDBBuffer, logger)
	if err := ingestPipeline.Start(); err != nil {
		logger.Fatal("Failed to start span ingest pipeline", zap.Error(err))
	}

	srv := grpc.NewServer()
	traceServiceServer := traceServer.NewTraceServiceServerImpl(
		logger,
		spanBus,
	)
	protoTrace.RegisterTraceServiceServer(srv, traceServiceServer)

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		<-signals
		logger.Info("Shutting down gRPC service")
		srv.GracefulStop()
	}()

	logger.Info("gRPC service started, listening for OpenTelemetry traces...", zap.String("address", cfg.OtelServerAddress))
	if err := srv.Serve(listener); err != nil {
		logger.Fatal("Failed to serve", zap.Error(err))
	}

	spanBus.Wait()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := traceDBBuffer.Flush(ctx); err != nil {
		logger.Error("Failed to flush buffered spans on shutdown", zap.Error(err))
	}
}
