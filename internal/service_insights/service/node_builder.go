package service

import (
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"github.com/Avi18971911/Insights/internal/service_insights/classifier"
	"github.com/Avi18971911/Insights/internal/service_insights/model"
)

type NodeBuilder struct {
	classifier *classifier.Classifier
}

func NewNodeBuilder(classifier *classifier.Classifier) *NodeBuilder {
	return &NodeBuilder{classifier: classifier}
}

// BuildNodes folds every span into the node its classification points to. An empty id or name is
// a valid node identity, so spans with blank fields still build a node.
func (nb *NodeBuilder) BuildNodes(spans []spanModel.Span) model.NodeMap {
	nodes := make(model.NodeMap)
	for _, span := range spans {
		classification := nb.classifier.Classify(span)
		currentNode, ok := nodes[classification.NodeId]
		if !ok {
			nodes[classification.NodeId] = createNode(classification, span)
			continue
		}
		mergeSpanIntoNode(currentNode, span)
	}
	return nodes
}

func createNode(classification classifier.Classification, span spanModel.Span) *model.Node {
	node := &model.Node{
		Id:          classification.NodeId,
		Name:        classification.NodeName,
		ServiceName: span.ServiceName,
		Type:        classification.Type,
		Count:       1,
		Duration:    span.Duration,
		AvgDuration: averageDurationMillis(span.Duration, 1),
		Operations:  map[string]int{span.OperationName: 1},
		TraceIds:    []string{span.TraceID},
	}
	if classification.Type == model.Database {
		node.DatabaseType = classification.DatabaseType
	}
	return node
}

func mergeSpanIntoNode(node *model.Node, span spanModel.Span) {
	node.Operations[span.OperationName]++
	node.Count++
	node.Duration += span.Duration
	node.AvgDuration = averageDurationMillis(node.Duration, node.Count)
	node.TraceIds = append(node.TraceIds, span.TraceID)
}

// averageDurationMillis truncates rather than rounds.
func averageDurationMillis(totalMicros int64, count int) int64 {
	return totalMicros / int64(count) / 1000
}
