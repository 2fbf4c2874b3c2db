package service

import (
	"github.com/Avi18971911/Insights/internal/service_insights/model"
	"sort"
)

const (
	uninstrumentedNodeIdSuffix = "-missing-trace"
	uninstrumentedNodeName     = "Uninstrumented Service"
	uninstrumentedNodeService  = "unknown"
)

// ProcessNodesAndLinks derives leaf and central flags, synthesizes uninstrumented nodes and
// summarizes violations. It must run after cycle detection.
func ProcessNodesAndLinks(serviceName string, graph model.Graph, cyclesFound int) (model.Graph, model.Summary) {
	nonLeaves := make(map[string]bool, len(graph.Nodes))
	for _, link := range graph.Links {
		// source is the calling side of the link, not necessarily a root of the graph
		source, sourceOk := graph.Nodes[link.Source]
		target, targetOk := graph.Nodes[link.Target]
		if sourceOk && targetOk && source.InvalidCycleDetected && target.InvalidCycleDetected {
			link.InvalidCycleDetected = true
			link.InvalidCyclePath = source.InvalidCyclePath
		}
		nonLeaves[link.Source] = true
	}

	uniqueTraces := make(map[string]struct{})
	uninstrumentedCount := 0

	for _, id := range sortedNodeIds(graph.Nodes) {
		node := graph.Nodes[id]
		if node.ServiceName == serviceName && node.Type != model.Outbound {
			node.IsCentral = true
		}
		for _, traceId := range node.TraceIds {
			uniqueTraces[traceId] = struct{}{}
		}
		node.IsLeaf = !nonLeaves[node.Id]

		if node.IsLeaf && node.Type == model.Mesh {
			uninstrumentedCount++
			uninstrumentedNode := newUninstrumentedNode(node)
			graph.Nodes[uninstrumentedNode.Id] = uninstrumentedNode
			graph.Links[model.LinkId(node.Id, uninstrumentedNode.Id)] = createLink(node.Id, uninstrumentedNode.Id, true)
		}

		// a client call left the system and nothing answered
		if node.IsLeaf && node.Type == model.Outbound {
			node.Type = model.Uninstrumented
			uninstrumentedCount++
		}
	}

	violations := model.Violations{}
	if cyclesFound > 0 {
		violations.Cycles = &cyclesFound
	}
	if uninstrumentedCount > 0 {
		violations.Uninstrumented = &uninstrumentedCount
	}

	return graph, model.Summary{
		Violations:       violations,
		HasViolations:    !violations.IsEmpty(),
		TracesConsidered: len(uniqueTraces),
	}
}

// newUninstrumentedNode copies every field of the leaf mesh node, flags included, and only replaces
// its identity and type.
func newUninstrumentedNode(node *model.Node) *model.Node {
	uninstrumentedNode := node.Clone()
	uninstrumentedNode.Id = node.Id + uninstrumentedNodeIdSuffix
	uninstrumentedNode.Name = uninstrumentedNodeName
	uninstrumentedNode.ServiceName = uninstrumentedNodeService
	uninstrumentedNode.Type = model.Uninstrumented
	uninstrumentedNode.DatabaseType = ""
	return uninstrumentedNode
}

func sortedNodeIds(nodes model.NodeMap) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
