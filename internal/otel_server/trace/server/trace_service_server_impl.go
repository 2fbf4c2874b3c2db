package server

import (
	"context"
	"encoding/hex"
	"fmt"
	"github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"github.com/Avi18971911/Insights/internal/pipeline/event_bus"
	"github.com/Avi18971911/Insights/internal/pipeline/ingest"
	"github.com/Avi18971911/Insights/internal/service_insights/classifier"
	protoTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	commonV1 "go.opentelemetry.io/proto/otlp/common/v1"
	"go.opentelemetry.io/proto/otlp/trace/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"strconv"
	"strings"
	"time"
)

const (
	serviceNameAttribute = "service.name"
	unknownServiceName   = "Never Assigned"
	spanKindPrefix       = "SPAN_KIND_"
)

type TraceServiceServerImpl struct {
	protoTrace.UnimplementedTraceServiceServer
	spanBus event_bus.InsightsEventBus[[]model.Span, []model.Span]
	logger  *zap.Logger
}

func NewTraceServiceServerImpl(
	logger *zap.Logger,
	spanBus event_bus.InsightsEventBus[[]model.Span, []model.Span],
) TraceServiceServerImpl {
	logger.Info("Creating new TraceServiceServerImpl")
	return TraceServiceServerImpl{
		logger:  logger,
		spanBus: spanBus,
	}
}

// Export converts every resource span batch and publishes it for ingestion.
func (tss TraceServiceServerImpl) Export(
	ctx context.Context,
	req *protoTrace.ExportTraceServiceRequest,
) (*protoTrace.ExportTraceServiceResponse, error) {
	createdAt := time.Now().UTC()
	for _, resourceSpan := range req.ResourceSpans {
		serviceName := getServiceName(resourceSpan)
		if serviceName == unknownServiceName {
			tss.logger.Warn("Service name not found in resource span")
		}

		typedSpans := getTypedSpans(resourceSpan, serviceName, createdAt)
		if len(typedSpans) == 0 {
			continue
		}
		if err := tss.spanBus.Publish(ingest.SpanIngestTopic, typedSpans); err != nil {
			tss.logger.Error(
				"Failed to publish spans for ingestion",
				zap.String("service_name", serviceName),
				zap.Int("spans", len(typedSpans)),
				zap.Error(err),
			)
			return nil, status.Errorf(codes.Internal, "failed to ingest spans of %s", serviceName)
		}
	}

	return &protoTrace.ExportTraceServiceResponse{}, nil
}

func getServiceName(resourceSpan *v1.ResourceSpans) string {
	var serviceName = unknownServiceName
	for _, attr := range resourceSpan.GetResource().GetAttributes() {
		if attr.Key == serviceNameAttribute {
			serviceName = attr.Value.GetStringValue()
		}
	}
	return serviceName
}

func getTypedSpans(resourceSpan *v1.ResourceSpans, serviceName string, createdAt time.Time) []model.Span {
	var typedSpans []model.Span
	for _, scopeSpan := range resourceSpan.ScopeSpans {
		for _, span := range scopeSpan.Spans {
			typedSpans = append(typedSpans, getTypedSpan(span, serviceName, createdAt))
		}
	}
	return typedSpans
}

func getTypedSpan(span *v1.Span, serviceName string, createdAt time.Time) model.Span {
	spanId := hex.EncodeToString(span.SpanId)
	traceId := hex.EncodeToString(span.TraceId)

	return model.Span{
		Id:            generateDocumentId(traceId, spanId),
		CreatedAt:     createdAt,
		SpanID:        spanId,
		ParentSpanID:  hex.EncodeToString(span.ParentSpanId),
		TraceID:       traceId,
		ServiceName:   serviceName,
		OperationName: span.Name,
		StartTime:     time.Unix(0, int64(span.StartTimeUnixNano)).UTC(),
		EndTime:       time.Unix(0, int64(span.EndTimeUnixNano)).UTC(),
		Duration:      getDurationMicros(span),
		SpanKind:      span.Kind.String(),
		Tags:          getTags(span),
	}
}

// generateDocumentId makes re-exported spans overwrite their earlier copy.
func generateDocumentId(traceId string, spanId string) string {
	return fmt.Sprintf("%s-%s", traceId, spanId)
}

func getDurationMicros(span *v1.Span) int64 {
	if span.EndTimeUnixNano < span.StartTimeUnixNano {
		return 0
	}
	return int64((span.EndTimeUnixNano - span.StartTimeUnixNano) / uint64(time.Microsecond))
}

// getTags keeps attribute order and adds a span.kind tag unless the attributes already carry one.
func getTags(span *v1.Span) []model.Tag {
	tags := make([]model.Tag, 0, len(span.Attributes)+1)
	hasSpanKind := false
	for _, attribute := range span.Attributes {
		if attribute.Key == classifier.SpanKindTag {
			hasSpanKind = true
		}
		tags = append(tags, model.Tag{Key: attribute.Key, Value: anyValueToString(attribute.Value)})
	}
	if !hasSpanKind && span.Kind != v1.Span_SPAN_KIND_UNSPECIFIED {
		tags = append(tags, model.Tag{Key: classifier.SpanKindTag, Value: getSpanKindTagValue(span.Kind)})
	}
	return tags
}

func getSpanKindTagValue(kind v1.Span_SpanKind) string {
	return strings.ToLower(strings.TrimPrefix(kind.String(), spanKindPrefix))
}

func anyValueToString(value *commonV1.AnyValue) string {
	switch v := value.GetValue().(type) {
	case *commonV1.AnyValue_StringValue:
		return v.StringValue
	case *commonV1.AnyValue_BoolValue:
		return strconv.FormatBool(v.BoolValue)
	case *commonV1.AnyValue_IntValue:
		return strconv.FormatInt(v.IntValue, 10)
	case *commonV1.AnyValue_DoubleValue:
		return strconv.FormatFloat(v.DoubleValue, 'f', -1, 64)
	case *commonV1.AnyValue_BytesValue:
		return hex.EncodeToString(v.BytesValue)
	case *commonV1.AnyValue_ArrayValue:
		elements := make([]string, len(v.ArrayValue.GetValues()))
		for i, element := range v.ArrayValue.GetValues() {
			elements[i] = anyValueToString(element)
		}
		return "[" + strings.Join(elements, ",") + "]"
	case *commonV1.AnyValue_KvlistValue:
		pairs := make([]string, len(v.KvlistValue.GetValues()))
		for i, pair := range v.KvlistValue.GetValues() {
			pairs[i] = pair.Key + "=" + anyValueToString(pair.Value)
		}
		return "{" + strings.Join(pairs, ",") + "}"
	default:
		return ""
	}
}
