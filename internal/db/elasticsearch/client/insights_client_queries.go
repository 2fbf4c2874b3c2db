package client

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/Avi18971911/Insights/internal/db/elasticsearch/model"
	"strings"
)

func (a *InsightsClientImpl) Search(
	ctx context.Context,
	query string,
	indices []string,
	queryResultSize *int,
) ([]map[string]interface{}, error) {
	res, err := a.es.Search(
		a.es.Search.WithContext(ctx),
		a.es.Search.WithIndex(indices...),
		a.es.Search.WithBody(strings.NewReader(query)),
		a.es.Search.WithSize(getQuerySize(queryResultSize)),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("failed to execute query: %s", res.String())
	}

	var esResponse model.EsResponse
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	results := make([]map[string]interface{}, 0, len(esResponse.Hits.HitArray))
	for _, hit := range esResponse.Hits.HitArray {
		source := hit.Source
		if source == nil {
			source = make(map[string]interface{})
		}
		source["_id"] = hit.ID
		results = append(results, source)
	}

	return results, nil
}

func (a *InsightsClientImpl) TermsAggregation(
	ctx context.Context,
	query string,
	indices []string,
	aggregationName string,
) ([]string, error) {
	res, err := a.es.Search(
		a.es.Search.WithContext(ctx),
		a.es.Search.WithIndex(indices...),
		a.es.Search.WithBody(strings.NewReader(query)),
		a.es.Search.WithSize(0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute aggregation: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("failed to execute aggregation: %s", res.String())
	}

	var aggregationResponse model.EsAggregationResponse
	if err := json.NewDecoder(res.Body).Decode(&aggregationResponse); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation response body: %w", err)
	}

	aggregation, ok := aggregationResponse.Aggregations[aggregationName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAggregationNotFound, aggregationName)
	}
	keys := make([]string, len(aggregation.Buckets))
	for i, bucket := range aggregation.Buckets {
		keys[i] = bucket.Key
	}
	return keys, nil
}

func (a *InsightsClientImpl) Count(
	ctx context.Context,
	query string,
	indices []string,
) (int64, error) {
	res, err := a.es.Count(
		a.es.Count.WithContext(ctx),
		a.es.Count.WithIndex(indices...),
		a.es.Count.WithBody(strings.NewReader(query)),
	)

	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("failed to execute query: %s", res.String())
	}

	var countResponse model.CountResponse
	if err := json.NewDecoder(res.Body).Decode(&countResponse); err != nil {
		return 0, fmt.Errorf("failed to decode response body: %w", err)
	}

	return int64(countResponse.Count), nil
}

func getQuerySize(querySize *int) int {
	if querySize == nil {
		return SearchResultSize
	}
	return *querySize
}
