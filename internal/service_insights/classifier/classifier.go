package classifier

import (
	"errors"
	"fmt"
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"github.com/Avi18971911/Insights/internal/service_insights/model"
)

// SpanType is a span category. Declaration order is classification priority: the first
// enabled category whose predicate matches wins, and Service is the fallback.
type SpanType int

const (
	Edge SpanType = iota
	Gateway
	Mesh
	Database
	Outbound
	Service
)

var spanTypesInPriorityOrder = []SpanType{Edge, Gateway, Mesh, Database, Outbound, Service}

var spanTypeNames = map[SpanType]string{
	Edge:     "edge",
	Gateway:  "gateway",
	Mesh:     "mesh",
	Database: "database",
	Outbound: "outbound",
	Service:  "service",
}

var spanTypeNodeTypes = map[SpanType]model.NodeType{
	Edge:     model.Edge,
	Gateway:  model.Gateway,
	Mesh:     model.Mesh,
	Database: model.Database,
	Outbound: model.Outbound,
	Service:  model.Service,
}

func (st SpanType) String() string {
	name, ok := spanTypeNames[st]
	if !ok {
		return fmt.Sprintf("SpanType(%d)", int(st))
	}
	return name
}

func (st SpanType) NodeType() model.NodeType {
	return spanTypeNodeTypes[st]
}

// Rule is the strategy bundle for one span category. IsType is ignored for Service.
// DatabaseType is only consulted for Database.
type Rule struct {
	IsType       func(span spanModel.Span) bool
	NodeId       func(span spanModel.Span) string
	NodeName     func(span spanModel.Span) string
	DatabaseType func(span spanModel.Span) string
}

type Rules map[SpanType]Rule

type Classification struct {
	Type         model.NodeType
	NodeId       string
	NodeName     string
	DatabaseType string
}

type Classifier struct {
	enabled []SpanType
	rules   Rules
}

// NewClassifier validates the rule table. A missing Service rule is a configuration error.
func NewClassifier(rules Rules) (*Classifier, error) {
	service, ok := rules[Service]
	if !ok || service.NodeId == nil || service.NodeName == nil {
		return nil, ErrMissingServiceRule
	}

	var enabled []SpanType
	for _, spanType := range spanTypesInPriorityOrder {
		if spanType == Service {
			continue
		}
		rule, ok := rules[spanType]
		if !ok || rule.IsType == nil {
			continue
		}
		if rule.NodeId == nil || rule.NodeName == nil {
			return nil, fmt.Errorf("%w: %s is missing a node id or node name extractor", ErrInvalidRule, spanType)
		}
		enabled = append(enabled, spanType)
	}

	return &Classifier{
		enabled: enabled,
		rules:   rules,
	}, nil
}

func (c *Classifier) Classify(span spanModel.Span) Classification {
	spanType := c.SpanTypeOf(span)
	rule := c.rules[spanType]
	classification := Classification{
		Type:     spanType.NodeType(),
		NodeId:   rule.NodeId(span),
		NodeName: rule.NodeName(span),
	}
	if spanType == Database && rule.DatabaseType != nil {
		classification.DatabaseType = rule.DatabaseType(span)
	}
	return classification
}

func (c *Classifier) SpanTypeOf(span spanModel.Span) SpanType {
	for _, spanType := range c.enabled {
		if c.rules[spanType].IsType(span) {
			return spanType
		}
	}
	return Service
}

func (c *Classifier) NodeId(span spanModel.Span) string {
	return c.rules[c.SpanTypeOf(span)].NodeId(span)
}

// EnabledSpanTypes lists the categories that can match, in priority order, ending with Service.
func (c *Classifier) EnabledSpanTypes() []SpanType {
	return append(append([]SpanType(nil), c.enabled...), Service)
}

var (
	ErrMissingServiceRule = errors.New("missing required configuration: span type rule for service")
	ErrInvalidRule        = errors.New("invalid span type rule")
)
