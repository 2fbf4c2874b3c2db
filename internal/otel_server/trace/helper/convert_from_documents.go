package helper

import (
	"fmt"
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"time"
)

// ConvertFromDocuments turns span_index search hits back into spans. Identity fields are required,
// timestamps and tags are optional.
func ConvertFromDocuments(res []map[string]interface{}) ([]spanModel.Span, error) {
	spans := make([]spanModel.Span, 0, len(res))
	for _, hit := range res {
		doc := spanModel.Span{}

		id, ok := hit["_id"].(string)
		if ok {
			doc.Id = id
		}

		spanId, ok := hit["span_id"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert span_id to string %v", hit["span_id"])
		}
		doc.SpanID = spanId

		parentSpanId, ok := hit["parent_span_id"].(string)
		if !ok && hit["parent_span_id"] != nil {
			return nil, fmt.Errorf("failed to convert parent_span_id to string %v", hit["parent_span_id"])
		}
		doc.ParentSpanID = parentSpanId

		traceId, ok := hit["trace_id"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert trace_id to string %v", hit["trace_id"])
		}
		doc.TraceID = traceId

		serviceName, ok := hit["service_name"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert service_name to string %v", hit["service_name"])
		}
		doc.ServiceName = serviceName

		operationName, ok := hit["operation_name"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert operation_name to string %v", hit["operation_name"])
		}
		doc.OperationName = operationName

		duration, ok := hit["duration"].(float64)
		if !ok {
			return nil, fmt.Errorf("failed to convert duration to number %v", hit["duration"])
		}
		doc.Duration = int64(duration)

		spanKind, ok := hit["span_kind"].(string)
		if ok {
			doc.SpanKind = spanKind
		}

		var err error
		if doc.CreatedAt, err = optionalTime(hit, "created_at"); err != nil {
			return nil, err
		}
		if doc.StartTime, err = optionalTime(hit, "start_time"); err != nil {
			return nil, err
		}
		if doc.EndTime, err = optionalTime(hit, "end_time"); err != nil {
			return nil, err
		}

		tags, err := typeTags(hit["tags"])
		if err != nil {
			return nil, err
		}
		doc.Tags = tags

		spans = append(spans, doc)
	}
	return spans, nil
}

func optionalTime(hit map[string]interface{}, field string) (time.Time, error) {
	value, ok := hit[field]
	if !ok || value == nil {
		return time.Time{}, nil
	}
	timestamp, ok := value.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("failed to convert %s to string %v", field, value)
	}
	parsed, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s to time.Time: %w", field, err)
	}
	return parsed, nil
}

func typeTags(value interface{}) ([]spanModel.Tag, error) {
	if value == nil {
		return nil, nil
	}
	rawTags, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("failed to convert tags to []interface{} %v", value)
	}
	tags := make([]spanModel.Tag, 0, len(rawTags))
	for _, rawTag := range rawTags {
		tagMap, ok := rawTag.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("failed to convert tag to map[string]interface{} %v", rawTag)
		}
		key, ok := tagMap["key"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert tag key to string %v", tagMap["key"])
		}
		tagValue := ""
		if rawValue, ok := tagMap["value"]; ok && rawValue != nil {
			tagValue = fmt.Sprintf("%v", rawValue)
		}
		tags = append(tags, spanModel.Tag{Key: key, Value: tagValue})
	}
	return tags, nil
}
