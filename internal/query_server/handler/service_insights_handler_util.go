package handler

import (
	"errors"
	"fmt"
	serviceInsights "github.com/Avi18971911/Insights/internal/query_server/service/service_insights"
	"github.com/Avi18971911/Insights/internal/service_insights/model"
	"net/url"
	"strconv"
	"time"
)

const defaultWindow = time.Hour

func getSearchParams(query url.Values, now time.Time) (serviceInsights.SearchParams, error) {
	serviceName := query.Get("serviceName")
	if serviceName == "" {
		return serviceInsights.SearchParams{}, ErrNoServiceName
	}

	to := now
	if rawTo := query.Get("to"); rawTo != "" {
		millis, err := strconv.ParseInt(rawTo, 10, 64)
		if err != nil {
			return serviceInsights.SearchParams{}, fmt.Errorf("%w: to=%q", ErrInvalidTimestamp, rawTo)
		}
		to = time.UnixMilli(millis)
	}

	from := to.Add(-defaultWindow)
	if rawFrom := query.Get("from"); rawFrom != "" {
		millis, err := strconv.ParseInt(rawFrom, 10, 64)
		if err != nil {
			return serviceInsights.SearchParams{}, fmt.Errorf("%w: from=%q", ErrInvalidTimestamp, rawFrom)
		}
		from = time.UnixMilli(millis)
	}

	if from.After(to) {
		return serviceInsights.SearchParams{}, ErrInvalidWindow
	}

	return serviceInsights.SearchParams{
		ServiceName: serviceName,
		From:        from,
		To:          to,
	}, nil
}

// MapServiceInsightsToDTO renders the graph in the shape the service insights UI consumes.
func MapServiceInsightsToDTO(input model.ServiceInsights) ServiceInsightsResponseDTO {
	nodes := make([]NodeDTO, len(input.Nodes))
	for i, node := range input.Nodes {
		nodes[i] = mapNodeToDTO(node)
	}
	links := make([]LinkDTO, len(input.Links))
	for i, link := range input.Links {
		links[i] = mapLinkToDTO(link)
	}
	return ServiceInsightsResponseDTO{
		Summary: SummaryDTO{
			Violations: ViolationsDTO{
				Cycles:         input.Summary.Violations.Cycles,
				Uninstrumented: input.Summary.Violations.Uninstrumented,
			},
			HasViolations:    input.Summary.HasViolations,
			TracesConsidered: input.Summary.TracesConsidered,
		},
		Nodes: nodes,
		Links: links,
	}
}

func mapNodeToDTO(node model.Node) NodeDTO {
	return NodeDTO{
		Id:                   node.Id,
		Name:                 node.Name,
		ServiceName:          node.ServiceName,
		Type:                 string(node.Type),
		DatabaseType:         node.DatabaseType,
		Count:                node.Count,
		Duration:             node.Duration,
		AvgDuration:          node.AvgDuration,
		Operations:           node.Operations,
		TraceIds:             nonNil(node.TraceIds),
		IsLeaf:               node.IsLeaf,
		IsCentral:            node.IsCentral,
		InvalidCycleDetected: node.InvalidCycleDetected,
		InvalidCyclePath:     nonNil(node.InvalidCyclePath),
	}
}

func mapLinkToDTO(link model.Link) LinkDTO {
	return LinkDTO{
		Source:               link.Source,
		Target:               link.Target,
		Count:                link.Count,
		Tps:                  link.Tps,
		IsUninstrumented:     link.IsUninstrumented,
		InvalidCycleDetected: link.InvalidCycleDetected,
		InvalidCyclePath:     nonNil(link.InvalidCyclePath),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var (
	ErrNoServiceName    = errors.New("no serviceName provided")
	ErrInvalidTimestamp = errors.New("timestamps must be unix milliseconds")
	ErrInvalidWindow    = errors.New("from must not be after to")
)
