//go:build integration

package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/Avi18971911/Insights/internal/db/elasticsearch/client"
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"github.com/elastic/go-elasticsearch/v8"
	"time"
)

func deleteAllDocumentsFromIndex(es *elasticsearch.Client, index string) error {
	queryJSON, _ := json.Marshal(getAllQuery())
	res, err := es.DeleteByQuery([]string{index}, bytes.NewReader(queryJSON), es.DeleteByQuery.WithRefresh(true))
	if err != nil {
		return fmt.Errorf("failed to delete documents by query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to delete documents in index %s", res.String())
	}
	return nil
}

func loadDataIntoElasticsearch[Data any](ac client.InsightsClient, data []Data, index string) error {
	metaMap, dataMap, err := client.ToMetaAndDataMap(data)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ac.BulkIndex(ctx, metaMap, dataMap, index)
}

func getAllQuery() map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
	}
}

// span builds a stored span starting at start and lasting durationMicros.
func span(
	traceId string,
	spanId string,
	parentSpanId string,
	serviceName string,
	operationName string,
	start time.Time,
	durationMicros int64,
	tags ...spanModel.Tag,
) spanModel.Span {
	return spanModel.Span{
		Id:            traceId + "-" + spanId,
		CreatedAt:     start,
		SpanID:        spanId,
		ParentSpanID:  parentSpanId,
		TraceID:       traceId,
		ServiceName:   serviceName,
		OperationName: operationName,
		StartTime:     start,
		EndTime:       start.Add(time.Duration(durationMicros) * time.Microsecond),
		Duration:      durationMicros,
		Tags:          tags,
	}
}
