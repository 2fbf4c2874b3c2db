package service

import (
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"github.com/Avi18971911/Insights/internal/service_insights/classifier"
	"github.com/Avi18971911/Insights/internal/service_insights/model"
	"go.uber.org/zap"
	"sort"
)

type GraphExtractor interface {
	// ExtractGraph builds the dependency graph of the spans, which may belong to many traces.
	// serviceName marks the central nodes. Irregular spans degrade the graph instead of failing it.
	ExtractGraph(spans []spanModel.Span, serviceName string) model.ServiceInsights
}

type GraphExtractorImpl struct {
	nodeBuilder *NodeBuilder
	linkBuilder *LinkBuilder
	logger      *zap.Logger
}

func NewGraphExtractor(classifier *classifier.Classifier, logger *zap.Logger) *GraphExtractorImpl {
	return &GraphExtractorImpl{
		nodeBuilder: NewNodeBuilder(classifier),
		linkBuilder: NewLinkBuilder(classifier),
		logger:      logger,
	}
}

func (ge *GraphExtractorImpl) ExtractGraph(
	spans []spanModel.Span,
	serviceName string,
) model.ServiceInsights {
	nodes := ge.nodeBuilder.BuildNodes(spans)
	links := ge.linkBuilder.BuildLinks(spans)

	graph, cyclesFound := DetectCycles(model.Graph{Nodes: nodes, Links: links})
	graph, summary := ProcessNodesAndLinks(serviceName, graph, cyclesFound)

	ge.logger.Debug(
		"Extracted service insights graph",
		zap.String("service_name", serviceName),
		zap.Int("spans", len(spans)),
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("links", len(graph.Links)),
		zap.Int("cycles", cyclesFound),
		zap.Int("traces_considered", summary.TracesConsidered),
	)

	return model.ServiceInsights{
		Summary: summary,
		Nodes:   nodeList(graph.Nodes),
		Links:   linkList(graph.Links),
	}
}

func nodeList(nodes model.NodeMap) []model.Node {
	list := make([]model.Node, 0, len(nodes))
	for _, id := range sortedNodeIds(nodes) {
		list = append(list, *nodes[id])
	}
	return list
}

func linkList(links model.LinkMap) []model.Link {
	list := make([]model.Link, 0, len(links))
	for _, link := range links {
		list = append(list, *link)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Source != list[j].Source {
			return list[i].Source < list[j].Source
		}
		return list[i].Target < list[j].Target
	})
	return list
}
