package service_insights

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/Avi18971911/Insights/internal/db/elasticsearch/bootstrapper"
	"github.com/Avi18971911/Insights/internal/db/elasticsearch/client"
	spanHelper "github.com/Avi18971911/Insights/internal/otel_server/trace/helper"
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"go.uber.org/zap"
	"time"
)

const timeout = 10 * time.Second

type SpanFetcher interface {
	// FetchSpans returns every span of every trace in which serviceName took part between from and to.
	FetchSpans(ctx context.Context, serviceName string, from time.Time, to time.Time) ([]spanModel.Span, error)
}

type SpanFetcherImpl struct {
	ac        client.InsightsClient
	fetchSize int
	logger    *zap.Logger
}

func NewSpanFetcherImpl(ac client.InsightsClient, fetchSize int, logger *zap.Logger) *SpanFetcherImpl {
	return &SpanFetcherImpl{
		ac:        ac,
		fetchSize: fetchSize,
		logger:    logger,
	}
}

func (sf *SpanFetcherImpl) FetchSpans(
	ctx context.Context,
	serviceName string,
	from time.Time,
	to time.Time,
) ([]spanModel.Span, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	traceIds, err := sf.getTraceIds(queryCtx, serviceName, from, to)
	if err != nil {
		return nil, err
	}
	if len(traceIds) == 0 {
		return []spanModel.Span{}, nil
	}

	queryJson, err := json.Marshal(getSpansOfTracesQuery(traceIds))
	if err != nil {
		return nil, fmt.Errorf("error when marshalling spans query to JSON: %w", err)
	}
	querySize := sf.fetchSize
	res, err := sf.ac.Search(queryCtx, string(queryJson), []string{bootstrapper.SpanIndexName}, &querySize)
	if err != nil {
		return nil, fmt.Errorf("error when searching for spans of %d traces: %w", len(traceIds), err)
	}
	if len(res) == querySize {
		sf.logger.Warn(
			"Span fetch hit the size limit, the graph may be partial",
			zap.String("service_name", serviceName),
			zap.Int("traces", len(traceIds)),
			zap.Int("fetch_size", querySize),
			zap.Int64("total_spans", sf.countSpans(queryCtx, traceIds)),
		)
	}

	spans, err := spanHelper.ConvertFromDocuments(res)
	if err != nil {
		return nil, fmt.Errorf("error when converting search result to spans: %w", err)
	}
	return spans, nil
}

func (sf *SpanFetcherImpl) getTraceIds(
	ctx context.Context,
	serviceName string,
	from time.Time,
	to time.Time,
) ([]string, error) {
	queryJson, err := json.Marshal(getTraceIdsQuery(serviceName, from, to, sf.fetchSize))
	if err != nil {
		return nil, fmt.Errorf("error when marshalling trace id query to JSON: %w", err)
	}
	traceIds, err := sf.ac.TermsAggregation(
		ctx,
		string(queryJson),
		[]string{bootstrapper.SpanIndexName},
		traceIdsAggregationName,
	)
	if err != nil {
		return nil, fmt.Errorf("error when searching for trace ids of %s: %w", serviceName, err)
	}
	return traceIds, nil
}

// countSpans reports how many spans the traces hold, or -1 when they could not be counted.
func (sf *SpanFetcherImpl) countSpans(ctx context.Context, traceIds []string) int64 {
	queryJson, err := json.Marshal(getSpansOfTracesCountQuery(traceIds))
	if err != nil {
		sf.logger.Error("Failed to marshal span count query", zap.Error(err))
		return -1
	}
	total, err := sf.ac.Count(ctx, string(queryJson), []string{bootstrapper.SpanIndexName})
	if err != nil {
		sf.logger.Error("Failed to count the spans of the fetched traces", zap.Int("traces", len(traceIds)), zap.Error(err))
		return -1
	}
	return total
}
