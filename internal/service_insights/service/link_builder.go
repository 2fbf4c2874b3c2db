package service

import (
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"github.com/Avi18971911/Insights/internal/service_insights/classifier"
	"github.com/Avi18971911/Insights/internal/service_insights/model"
)

type LinkBuilder struct {
	classifier *classifier.Classifier
}

func NewLinkBuilder(classifier *classifier.Classifier) *LinkBuilder {
	return &LinkBuilder{classifier: classifier}
}

// BuildLinks creates one link per distinct pair of parent and child nodes. Spans whose parent is not
// part of the batch produce no link.
func (lb *LinkBuilder) BuildLinks(spans []spanModel.Span) model.LinkMap {
	spansById := make(map[string]spanModel.Span, len(spans))
	for _, span := range spans {
		spansById[span.SpanID] = span
	}

	links := make(model.LinkMap)
	for _, span := range spans {
		if span.ParentSpanID == "" {
			continue
		}
		parentSpan, ok := spansById[span.ParentSpanID]
		if !ok {
			continue
		}
		parentNodeId := lb.classifier.NodeId(parentSpan)
		childNodeId := lb.classifier.NodeId(span)
		if parentNodeId == childNodeId {
			continue
		}
		linkId := model.LinkId(parentNodeId, childNodeId)
		currentLink, ok := links[linkId]
		if !ok {
			links[linkId] = createLink(parentNodeId, childNodeId, false)
			continue
		}
		currentLink.Count++
		currentLink.Tps++
	}
	return links
}

func createLink(source string, target string, isUninstrumented bool) *model.Link {
	return &model.Link{
		Source:           source,
		Target:           target,
		Count:            1,
		Tps:              1,
		IsUninstrumented: isUninstrumented,
	}
}
