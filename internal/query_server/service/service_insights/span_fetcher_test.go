package service_insights

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/Avi18971911/Insights/internal/db/elasticsearch/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"testing"
	"time"
)

type fakeInsightsClient struct {
	client.InsightsClient
	traceIds         []string
	aggregationErr   error
	documents        []map[string]interface{}
	searchErr        error
	aggregationQuery string
	searchQuery      string
	searchSize       int
	searches         int
	total            int64
	countErr         error
	countQuery       string
	counts           int
}

func (f *fakeInsightsClient) TermsAggregation(
	ctx context.Context,
	query string,
	indices []string,
	aggregationName string,
) ([]string, error) {
	f.aggregationQuery = query
	return f.traceIds, f.aggregationErr
}

func (f *fakeInsightsClient) Search(
	ctx context.Context,
	query string,
	indices []string,
	queryResultSize *int,
) ([]map[string]interface{}, error) {
	f.searches++
	f.searchQuery = query
	f.searchSize = *queryResultSize
	return f.documents, f.searchErr
}

func (f *fakeInsightsClient) Count(ctx context.Context, query string, indices []string) (int64, error) {
	f.counts++
	f.countQuery = query
	return f.total, f.countErr
}

func spanDocument(traceId string, spanId string, parentSpanId string, serviceName string) map[string]interface{} {
	return map[string]interface{}{
		"_id":            traceId + "-" + spanId,
		"span_id":        spanId,
		"parent_span_id": parentSpanId,
		"trace_id":       traceId,
		"service_name":   serviceName,
		"operation_name": "operation",
		"duration":       float64(1000),
		"tags":           []interface{}{},
	}
}

func TestFetchSpans(t *testing.T) {
	from := time.UnixMilli(1_700_000_000_000)
	to := from.Add(time.Hour)

	t.Run("should fetch every span of the traces the service took part in", func(t *testing.T) {
		fake := &fakeInsightsClient{
			traceIds: []string{"t1", "t2"},
			documents: []map[string]interface{}{
				spanDocument("t1", "s1", "", "frontend"),
				spanDocument("t1", "s2", "s1", "checkout"),
				spanDocument("t2", "s3", "", "checkout"),
			},
		}
		fetcher := NewSpanFetcherImpl(fake, 500, zap.NewNop())

		spans, err := fetcher.FetchSpans(context.Background(), "checkout", from, to)

		require.NoError(t, err)
		assert.Len(t, spans, 3)
		assert.Equal(t, "frontend", spans[0].ServiceName)
		assert.Equal(t, "s1", spans[1].ParentSpanID)
		assert.Equal(t, 500, fake.searchSize)

		var aggregationQuery map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(fake.aggregationQuery), &aggregationQuery))
		filters := aggregationQuery["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
		assert.Equal(t, "checkout", filters[0].(map[string]interface{})["term"].(map[string]interface{})["service_name"])
		startRange := filters[1].(map[string]interface{})["range"].(map[string]interface{})["start_time"].(map[string]interface{})
		assert.Equal(t, float64(to.UnixMilli()), startRange["lte"])
		endRange := filters[2].(map[string]interface{})["range"].(map[string]interface{})["end_time"].(map[string]interface{})
		assert.Equal(t, float64(from.UnixMilli()), endRange["gte"])

		var searchQuery map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(fake.searchQuery), &searchQuery))
		terms := searchQuery["query"].(map[string]interface{})["terms"].(map[string]interface{})
		assert.Equal(t, []interface{}{"t1", "t2"}, terms["trace_id"])
	})

	t.Run("should not search for spans when no trace matched", func(t *testing.T) {
		fake := &fakeInsightsClient{}
		fetcher := NewSpanFetcherImpl(fake, 500, zap.NewNop())

		spans, err := fetcher.FetchSpans(context.Background(), "checkout", from, to)

		require.NoError(t, err)
		assert.NotNil(t, spans)
		assert.Empty(t, spans)
		assert.Equal(t, 0, fake.searches)
	})

	t.Run("should log the span total when the fetch size is reached", func(t *testing.T) {
		fake := &fakeInsightsClient{
			traceIds: []string{"t1"},
			documents: []map[string]interface{}{
				spanDocument("t1", "s1", "", "checkout"),
				spanDocument("t1", "s2", "s1", "checkout"),
			},
			total: 7,
		}
		core, logs := observer.New(zapcore.WarnLevel)
		fetcher := NewSpanFetcherImpl(fake, 2, zap.New(core))

		spans, err := fetcher.FetchSpans(context.Background(), "checkout", from, to)

		require.NoError(t, err)
		assert.Len(t, spans, 2)
		require.Equal(t, 1, fake.counts)
		var countQuery map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(fake.countQuery), &countQuery))
		assert.NotContains(t, countQuery, "sort")
		terms := countQuery["query"].(map[string]interface{})["terms"].(map[string]interface{})
		assert.Equal(t, []interface{}{"t1"}, terms["trace_id"])

		warnings := logs.FilterMessage("Span fetch hit the size limit, the graph may be partial").All()
		require.Len(t, warnings, 1)
		assert.Equal(t, int64(7), warnings[0].ContextMap()["total_spans"])
	})

	t.Run("should still return the spans when they cannot be counted", func(t *testing.T) {
		fake := &fakeInsightsClient{
			traceIds:  []string{"t1"},
			documents: []map[string]interface{}{spanDocument("t1", "s1", "", "checkout")},
			countErr:  errors.New("count rejected"),
		}
		core, logs := observer.New(zapcore.WarnLevel)
		fetcher := NewSpanFetcherImpl(fake, 1, zap.New(core))

		spans, err := fetcher.FetchSpans(context.Background(), "checkout", from, to)

		require.NoError(t, err)
		assert.Len(t, spans, 1)
		assert.Equal(t, 1, logs.FilterMessage("Failed to count the spans of the fetched traces").Len())
		warnings := logs.FilterMessage("Span fetch hit the size limit, the graph may be partial").All()
		require.Len(t, warnings, 1)
		assert.Equal(t, int64(-1), warnings[0].ContextMap()["total_spans"])
	})

	t.Run("should not count spans below the fetch size", func(t *testing.T) {
		fake := &fakeInsightsClient{
			traceIds:  []string{"t1"},
			documents: []map[string]interface{}{spanDocument("t1", "s1", "", "checkout")},
		}
		fetcher := NewSpanFetcherImpl(fake, 500, zap.NewNop())

		_, err := fetcher.FetchSpans(context.Background(), "checkout", from, to)

		require.NoError(t, err)
		assert.Equal(t, 0, fake.counts)
	})

	t.Run("should return trace id lookup errors", func(t *testing.T) {
		fake := &fakeInsightsClient{aggregationErr: errors.New("index missing")}
		fetcher := NewSpanFetcherImpl(fake, 500, zap.NewNop())

		_, err := fetcher.FetchSpans(context.Background(), "checkout", from, to)

		assert.ErrorContains(t, err, "index missing")
	})

	t.Run("should return span search errors", func(t *testing.T) {
		fake := &fakeInsightsClient{traceIds: []string{"t1"}, searchErr: errors.New("timeout")}
		fetcher := NewSpanFetcherImpl(fake, 500, zap.NewNop())

		_, err := fetcher.FetchSpans(context.Background(), "checkout", from, to)

		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("should reject malformed documents", func(t *testing.T) {
		fake := &fakeInsightsClient{
			traceIds:  []string{"t1"},
			documents: []map[string]interface{}{{"trace_id": "t1"}},
		}
		fetcher := NewSpanFetcherImpl(fake, 500, zap.NewNop())

		_, err := fetcher.FetchSpans(context.Background(), "checkout", from, to)

		assert.Error(t, err)
	})
}
