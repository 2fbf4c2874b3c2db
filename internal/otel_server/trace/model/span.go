package model

import "time"

type Span struct {
	Id            string    `json:"_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	SpanID        string    `json:"span_id"`
	ParentSpanID  string    `json:"parent_span_id"` // empty for root spans
	TraceID       string    `json:"trace_id"`
	ServiceName   string    `json:"service_name"`
	OperationName string    `json:"operation_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Duration      int64     `json:"duration"` // microseconds
	SpanKind      string    `json:"span_kind"`
	Tags          []Tag     `json:"tags"` // keys are not guaranteed to be unique
}

type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Tag returns the value of the first tag with the given key.
func (s Span) Tag(key string) (string, bool) {
	for _, tag := range s.Tags {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}

func (s Span) HasTag(key string) bool {
	_, ok := s.Tag(key)
	return ok
}

// HasTagValue reports whether any tag matches both key and value, since keys may repeat.
func (s Span) HasTagValue(key string, value string) bool {
	for _, tag := range s.Tags {
		if tag.Key == key && tag.Value == value {
			return true
		}
	}
	return false
}
