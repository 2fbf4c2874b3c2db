package service_insights

import "time"

const traceIdsAggregationName = "trace_ids"

// getTraceIdsQuery finds the traces with a span of serviceName overlapping [from, to].
func getTraceIdsQuery(serviceName string, from time.Time, to time.Time, size int) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{
						"term": map[string]interface{}{
							"service_name": serviceName,
						},
					},
					{
						"range": map[string]interface{}{
							"start_time": map[string]interface{}{
								"lte":    to.UnixMilli(),
								"format": "epoch_millis",
							},
						},
					},
					{
						"range": map[string]interface{}{
							"end_time": map[string]interface{}{
								"gte":    from.UnixMilli(),
								"format": "epoch_millis",
							},
						},
					},
				},
			},
		},
		"aggs": map[string]interface{}{
			traceIdsAggregationName: map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "trace_id",
					"size":  size,
				},
			},
		},
	}
}

func getSpansOfTracesQuery(traceIds []string) map[string]interface{} {
	return map[string]interface{}{
		"query": spansOfTracesFilter(traceIds),
		"sort": []map[string]interface{}{
			{
				"start_time": map[string]interface{}{
					"order": "asc",
				},
			},
		},
	}
}

// getSpansOfTracesCountQuery matches the same spans as getSpansOfTracesQuery. The count API rejects sort.
func getSpansOfTracesCountQuery(traceIds []string) map[string]interface{} {
	return map[string]interface{}{
		"query": spansOfTracesFilter(traceIds),
	}
}

func spansOfTracesFilter(traceIds []string) map[string]interface{} {
	return map[string]interface{}{
		"terms": map[string]interface{}{
			"trace_id": traceIds,
		},
	}
}
