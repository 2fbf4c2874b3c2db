package server

import (
	"context"
	"errors"
	"github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"github.com/Avi18971911/Insights/internal/pipeline/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protoTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	commonV1 "go.opentelemetry.io/proto/otlp/common/v1"
	resourceV1 "go.opentelemetry.io/proto/otlp/resource/v1"
	"go.opentelemetry.io/proto/otlp/trace/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"testing"
)

type publishedBatch struct {
	topic string
	spans []model.Span
}

type fakeSpanBus struct {
	published []publishedBatch
	err       error
}

func (f *fakeSpanBus) Subscribe(topic string, handler func(input []model.Span) error, transactional bool) error {
	return nil
}

func (f *fakeSpanBus) Publish(topic string, arg []model.Span) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedBatch{topic: topic, spans: arg})
	return nil
}

func (f *fakeSpanBus) Wait() {}

func stringAttribute(key string, value string) *commonV1.KeyValue {
	return &commonV1.KeyValue{Key: key, Value: &commonV1.AnyValue{Value: &commonV1.AnyValue_StringValue{StringValue: value}}}
}

func resourceSpans(serviceName string, spans ...*v1.Span) *v1.ResourceSpans {
	return &v1.ResourceSpans{
		Resource: &resourceV1.Resource{
			Attributes: []*commonV1.KeyValue{stringAttribute("service.name", serviceName)},
		},
		ScopeSpans: []*v1.ScopeSpans{{Spans: spans}},
	}
}

func TestExport(t *testing.T) {
	t.Run("should convert and publish spans per resource", func(t *testing.T) {
		bus := &fakeSpanBus{}
		srv := NewTraceServiceServerImpl(zap.NewNop(), bus)
		span := &v1.Span{
			TraceId:           []byte{0x0a, 0x0b},
			SpanId:            []byte{0x01},
			ParentSpanId:      []byte{0x02},
			Name:              "GET /orders",
			Kind:              v1.Span_SPAN_KIND_SERVER,
			StartTimeUnixNano: 1_000_000_000,
			EndTimeUnixNano:   1_002_500_000,
			Attributes: []*commonV1.KeyValue{
				stringAttribute("http.method", "GET"),
				{Key: "retry", Value: &commonV1.AnyValue{Value: &commonV1.AnyValue_BoolValue{BoolValue: true}}},
				{Key: "http.status_code", Value: &commonV1.AnyValue{Value: &commonV1.AnyValue_IntValue{IntValue: 200}}},
			},
		}
		req := &protoTrace.ExportTraceServiceRequest{
			ResourceSpans: []*v1.ResourceSpans{
				resourceSpans("orders", span),
				resourceSpans("payments", &v1.Span{TraceId: []byte{0x0a, 0x0b}, SpanId: []byte{0x03}, Name: "charge"}),
			},
		}

		_, err := srv.Export(context.Background(), req)

		require.NoError(t, err)
		require.Len(t, bus.published, 2)
		assert.Equal(t, ingest.SpanIngestTopic, bus.published[0].topic)
		converted := bus.published[0].spans[0]
		assert.Equal(t, "0a0b-01", converted.Id)
		assert.Equal(t, "01", converted.SpanID)
		assert.Equal(t, "02", converted.ParentSpanID)
		assert.Equal(t, "0a0b", converted.TraceID)
		assert.Equal(t, "orders", converted.ServiceName)
		assert.Equal(t, "GET /orders", converted.OperationName)
		assert.Equal(t, int64(2500), converted.Duration)
		assert.Equal(t, "SPAN_KIND_SERVER", converted.SpanKind)
		assert.Equal(t, []model.Tag{
			{Key: "http.method", Value: "GET"},
			{Key: "retry", Value: "true"},
			{Key: "http.status_code", Value: "200"},
			{Key: "span.kind", Value: "server"},
		}, converted.Tags)
		assert.False(t, converted.CreatedAt.IsZero())

		root := bus.published[1].spans[0]
		assert.Equal(t, "payments", root.ServiceName)
		assert.Equal(t, "", root.ParentSpanID)
		assert.Empty(t, root.Tags)
	})

	t.Run("should keep a span.kind attribute instead of deriving one", func(t *testing.T) {
		bus := &fakeSpanBus{}
		srv := NewTraceServiceServerImpl(zap.NewNop(), bus)
		span := &v1.Span{
			SpanId:     []byte{0x01},
			Kind:       v1.Span_SPAN_KIND_CLIENT,
			Attributes: []*commonV1.KeyValue{stringAttribute("span.kind", "server")},
		}

		_, err := srv.Export(context.Background(), &protoTrace.ExportTraceServiceRequest{
			ResourceSpans: []*v1.ResourceSpans{resourceSpans("orders", span)},
		})

		require.NoError(t, err)
		assert.Equal(t, []model.Tag{{Key: "span.kind", Value: "server"}}, bus.published[0].spans[0].Tags)
	})

	t.Run("should mark spans of resources without a service name", func(t *testing.T) {
		bus := &fakeSpanBus{}
		srv := NewTraceServiceServerImpl(zap.NewNop(), bus)

		_, err := srv.Export(context.Background(), &protoTrace.ExportTraceServiceRequest{
			ResourceSpans: []*v1.ResourceSpans{{ScopeSpans: []*v1.ScopeSpans{{Spans: []*v1.Span{{SpanId: []byte{0x01}}}}}}},
		})

		require.NoError(t, err)
		assert.Equal(t, "Never Assigned", bus.published[0].spans[0].ServiceName)
	})

	t.Run("should not publish resources without spans", func(t *testing.T) {
		bus := &fakeSpanBus{}
		srv := NewTraceServiceServerImpl(zap.NewNop(), bus)

		_, err := srv.Export(context.Background(), &protoTrace.ExportTraceServiceRequest{
			ResourceSpans: []*v1.ResourceSpans{resourceSpans("orders")},
		})

		require.NoError(t, err)
		assert.Empty(t, bus.published)
	})

	t.Run("should fail the export when spans cannot be published", func(t *testing.T) {
		bus := &fakeSpanBus{err: errors.New("bus closed")}
		srv := NewTraceServiceServerImpl(zap.NewNop(), bus)

		_, err := srv.Export(context.Background(), &protoTrace.ExportTraceServiceRequest{
			ResourceSpans: []*v1.ResourceSpans{resourceSpans("orders", &v1.Span{SpanId: []byte{0x01}})},
		})

		assert.Equal(t, codes.Internal, status.Code(err))
	})
}

func TestAnyValueToString(t *testing.T) {
	t.Run("should stringify every attribute value type", func(t *testing.T) {
		cases := []struct {
			value    *commonV1.AnyValue
			expected string
		}{
			{&commonV1.AnyValue{Value: &commonV1.AnyValue_StringValue{StringValue: "a"}}, "a"},
			{&commonV1.AnyValue{Value: &commonV1.AnyValue_BoolValue{BoolValue: false}}, "false"},
			{&commonV1.AnyValue{Value: &commonV1.AnyValue_IntValue{IntValue: -7}}, "-7"},
			{&commonV1.AnyValue{Value: &commonV1.AnyValue_DoubleValue{DoubleValue: 1.5}}, "1.5"},
			{&commonV1.AnyValue{Value: &commonV1.AnyValue_BytesValue{BytesValue: []byte{0xff}}}, "ff"},
			{
				&commonV1.AnyValue{Value: &commonV1.AnyValue_ArrayValue{ArrayValue: &commonV1.ArrayValue{
					Values: []*commonV1.AnyValue{
						{Value: &commonV1.AnyValue_StringValue{StringValue: "a"}},
						{Value: &commonV1.AnyValue_IntValue{IntValue: 1}},
					},
				}}},
				"[a,1]",
			},
			{
				&commonV1.AnyValue{Value: &commonV1.AnyValue_KvlistValue{KvlistValue: &commonV1.KeyValueList{
					Values: []*commonV1.KeyValue{stringAttribute("k", "v")},
				}}},
				"{k=v}",
			},
			{nil, ""},
		}

		for _, c := range cases {
			assert.Equal(t, c.expected, anyValueToString(c.value))
		}
	})
}
