package ingest

import (
	"fmt"
	"github.com/Avi18971911/Insights/internal/db/write_buffer"
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"github.com/Avi18971911/Insights/internal/pipeline/event_bus"
	"go.uber.org/zap"
)

const SpanIngestTopic = "span_ingest"

// SpanIngestPipeline moves span batches published on SpanIngestTopic into the span write buffer.
type SpanIngestPipeline struct {
	spanBus     event_bus.InsightsEventBus[[]spanModel.Span, []spanModel.Span]
	writeBuffer write_buffer.DatabaseWriteBuffer[spanModel.Span]
	logger      *zap.Logger
}

func NewSpanIngestPipeline(
	spanBus event_bus.InsightsEventBus[[]spanModel.Span, []spanModel.Span],
	writeBuffer write_buffer.DatabaseWriteBuffer[spanModel.Span],
	logger *zap.Logger,
) *SpanIngestPipeline {
	return &SpanIngestPipeline{
		spanBus:     spanBus,
		writeBuffer: writeBuffer,
		logger:      logger,
	}
}

func (sip *SpanIngestPipeline) Start() error {
	err := sip.spanBus.Subscribe(
		SpanIngestTopic,
		func(input []spanModel.Span) error {
			if len(input) == 0 {
				return nil
			}
			sip.writeBuffer.WriteToBuffer(input)
			sip.logger.Debug("Buffered ingested spans", zap.Int("spans", len(input)))
			return nil
		},
		true,
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to input topic for SpanIngestPipeline: %w", err)
	}
	return nil
}
