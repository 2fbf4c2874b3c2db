package classifier

import (
	"fmt"
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"github.com/BurntSushi/toml"
	"os"
	"strings"
)

const (
	serviceNameField   = "service_name"
	operationNameField = "operation_name"
)

type ruleConfig struct {
	ServiceName     *string `toml:"service_name"`
	OperationName   *string `toml:"operation_name"`
	HasTag          *string `toml:"has_tag"`
	Tag             *string `toml:"tag"`
	TagValue        *string `toml:"tag_value"`
	ExcludeTag      *string `toml:"exclude_tag"`
	ExcludeTagValue *string `toml:"exclude_tag_value"`

	NodeId       *extractorConfig `toml:"node_id"`
	NodeName     *extractorConfig `toml:"node_name"`
	DatabaseType *extractorConfig `toml:"database_type"`
}

// extractorConfig reads a tag, falling back to a span field when the tag is absent.
type extractorConfig struct {
	Tag   string `toml:"tag"`
	Field string `toml:"field"`
}

// LoadRules reads span type rules from a TOML file. See ParseRules for the format.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read span type rules from %s: %w", path, err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse span type rules from %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules builds a rule table from TOML with one table per span type, e.g.
//
//	[database]
//	has_tag = "db.type"
//	node_id = { field = "operation_name" }
//	database_type = { tag = "db.type" }
//
// Every match key given must hold for a span to be of that type. Omitted span types are disabled.
func ParseRules(data []byte) (Rules, error) {
	var configs map[string]ruleConfig
	meta, err := toml.Decode(string(data), &configs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidRule, strings.Join(keys, ", "))
	}

	rules := make(Rules, len(configs))
	for name, config := range configs {
		spanType, ok := spanTypeFromName(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown span type %q", ErrInvalidRule, name)
		}
		rule, err := config.toRule(spanType)
		if err != nil {
			return nil, err
		}
		rules[spanType] = rule
	}
	return rules, nil
}

func (rc ruleConfig) toRule(spanType SpanType) (Rule, error) {
	if rc.NodeId == nil {
		return Rule{}, fmt.Errorf("%w: %s requires node_id", ErrInvalidRule, spanType)
	}
	nodeId, err := rc.NodeId.toExtractor(spanType)
	if err != nil {
		return Rule{}, err
	}
	nodeName := nodeId
	if rc.NodeName != nil {
		nodeName, err = rc.NodeName.toExtractor(spanType)
		if err != nil {
			return Rule{}, err
		}
	}
	rule := Rule{
		NodeId:   nodeId,
		NodeName: nodeName,
	}

	if rc.DatabaseType != nil {
		if spanType != Database {
			return Rule{}, fmt.Errorf("%w: database_type is only valid for database", ErrInvalidRule)
		}
		rule.DatabaseType, err = rc.DatabaseType.toExtractor(spanType)
		if err != nil {
			return Rule{}, err
		}
	}

	matchers := rc.matchers()
	if spanType == Service {
		if len(matchers) > 0 {
			return Rule{}, fmt.Errorf("%w: service is the fallback and takes no match keys", ErrInvalidRule)
		}
		return rule, nil
	}
	if rc.Tag != nil && rc.TagValue == nil {
		return Rule{}, fmt.Errorf("%w: %s sets tag without tag_value", ErrInvalidRule, spanType)
	}
	if len(matchers) == 0 {
		return Rule{}, fmt.Errorf("%w: %s has no match keys", ErrInvalidRule, spanType)
	}
	rule.IsType = func(span spanModel.Span) bool {
		for _, matches := range matchers {
			if !matches(span) {
				return false
			}
		}
		return true
	}
	return rule, nil
}

func (rc ruleConfig) matchers() []func(span spanModel.Span) bool {
	var matchers []func(span spanModel.Span) bool
	if rc.ServiceName != nil {
		name := *rc.ServiceName
		matchers = append(matchers, func(span spanModel.Span) bool { return span.ServiceName == name })
	}
	if rc.OperationName != nil {
		name := *rc.OperationName
		matchers = append(matchers, func(span spanModel.Span) bool { return span.OperationName == name })
	}
	if rc.HasTag != nil {
		key := *rc.HasTag
		matchers = append(matchers, func(span spanModel.Span) bool { return span.HasTag(key) })
	}
	if rc.Tag != nil && rc.TagValue != nil {
		key, value := *rc.Tag, *rc.TagValue
		matchers = append(matchers, func(span spanModel.Span) bool { return span.HasTagValue(key, value) })
	}
	if rc.ExcludeTag != nil {
		key := *rc.ExcludeTag
		if rc.ExcludeTagValue != nil {
			value := *rc.ExcludeTagValue
			matchers = append(matchers, func(span spanModel.Span) bool { return !span.HasTagValue(key, value) })
		} else {
			matchers = append(matchers, func(span spanModel.Span) bool { return !span.HasTag(key) })
		}
	}
	return matchers
}

func (ec extractorConfig) toExtractor(spanType SpanType) (func(span spanModel.Span) string, error) {
	var field func(span spanModel.Span) string
	switch ec.Field {
	case "":
	case serviceNameField:
		field = serviceName
	case operationNameField:
		field = operationName
	default:
		return nil, fmt.Errorf("%w: %s uses unknown field %q", ErrInvalidRule, spanType, ec.Field)
	}

	switch {
	case ec.Tag != "" && field != nil:
		return tagOr(ec.Tag, field), nil
	case ec.Tag != "":
		key := ec.Tag
		return func(span spanModel.Span) string {
			value, _ := span.Tag(key)
			return value
		}, nil
	case field != nil:
		return field, nil
	default:
		return nil, fmt.Errorf("%w: %s has an extractor with neither tag nor field", ErrInvalidRule, spanType)
	}
}

func spanTypeFromName(name string) (SpanType, bool) {
	for spanType, spanTypeName := range spanTypeNames {
		if spanTypeName == name {
			return spanType, true
		}
	}
	return 0, false
}
