package service

import (
	"fmt"
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"github.com/Avi18971911/Insights/internal/service_insights/classifier"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"sync/atomic"
	"testing"
)

var idCounter atomic.Int64

func nextId(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// trace assigns a fresh trace id to the spans and chains each span to the previous one as its parent.
func trace(spans ...spanModel.Span) []spanModel.Span {
	traceId := nextId("trace")
	for i := range spans {
		spans[i].TraceID = traceId
		if i > 0 {
			spans[i].ParentSpanID = spans[i-1].SpanID
		}
	}
	return spans
}

func traces(groups ...[]spanModel.Span) []spanModel.Span {
	var spans []spanModel.Span
	for _, group := range groups {
		spans = append(spans, group...)
	}
	return spans
}

func span(serviceName string, operationName string, tags ...spanModel.Tag) spanModel.Span {
	return spanModel.Span{
		SpanID:        nextId("span"),
		ServiceName:   serviceName,
		OperationName: operationName,
		Duration:      1000,
		Tags:          tags,
	}
}

func edgeSpan() spanModel.Span {
	return span("edge", "edge route")
}

func gatewaySpan() spanModel.Span {
	return span("gateway", "gateway route")
}

func uiAppSpan() spanModel.Span {
	return span("some-ui-app", "serve ui operation", spanModel.Tag{Key: "span.kind", Value: "server"})
}

// clientSpan is some-ui-app calling a server that left no span of its own.
func clientSpan() spanModel.Span {
	return span("some-ui-app", "ui client", spanModel.Tag{Key: "span.kind", Value: "client"})
}

func serverSpan() spanModel.Span {
	return span("some-backend-server", "backend operation", spanModel.Tag{Key: "span.kind", Value: "server"})
}

func meshSpan() spanModel.Span {
	return span("service-mesh", "mesh route")
}

func databaseSpan() spanModel.Span {
	return span(
		"some-backend-server",
		"SELECT *",
		spanModel.Tag{Key: "db.type", Value: "nosql"},
		spanModel.Tag{Key: "span.kind", Value: "client"},
	)
}

// mergedSpan is clientSpan and serverSpan merged into one.
func mergedSpan() spanModel.Span {
	return span(
		"some-backend-server",
		"ui client + backend operation",
		spanModel.Tag{Key: "X-HAYSTACK-IS-MERGED-SPAN", Value: "true"},
		spanModel.Tag{Key: "span.kind", Value: "client"},
		spanModel.Tag{Key: "span.kind", Value: "server"},
	)
}

func newDefaultClassifier(t *testing.T) *classifier.Classifier {
	c, err := classifier.NewClassifier(classifier.DefaultRules())
	require.NoError(t, err)
	return c
}

func newTestExtractor(t *testing.T) *GraphExtractorImpl {
	return NewGraphExtractor(newDefaultClassifier(t), zap.NewNop())
}
