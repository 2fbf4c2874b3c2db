package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"
	"io"
	"os"
	"strconv"
)

// spanRecord is a span as exported by trace UIs, with camel case keys and loosely typed tag values.
type spanRecord struct {
	SpanId        string      `json:"spanId"`
	ParentSpanId  string      `json:"parentSpanId"`
	TraceId       string      `json:"traceId"`
	ServiceName   string      `json:"serviceName"`
	OperationName string      `json:"operationName"`
	Duration      json.Number `json:"duration"`
	Tags          []tagRecord `json:"tags"`
}

type tagRecord struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

func readSpanFile(path string) ([]spanModel.Span, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open span file: %w", err)
	}
	defer f.Close()
	return readSpans(f)
}

func readSpans(r io.Reader) ([]spanModel.Span, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	var records []spanRecord
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode spans: %w", err)
	}

	spans := make([]spanModel.Span, len(records))
	for i, record := range records {
		span, err := record.toSpan()
		if err != nil {
			return nil, fmt.Errorf("span %d: %w", i, err)
		}
		spans[i] = span
	}
	return spans, nil
}

func (sr spanRecord) toSpan() (spanModel.Span, error) {
	var duration int64
	if sr.Duration != "" {
		parsed, err := strconv.ParseFloat(sr.Duration.String(), 64)
		if err != nil {
			return spanModel.Span{}, fmt.Errorf("invalid duration %q: %w", sr.Duration, err)
		}
		duration = int64(parsed)
	}

	tags := make([]spanModel.Tag, len(sr.Tags))
	for i, tag := range sr.Tags {
		value, err := tagValueToString(tag.Value)
		if err != nil {
			return spanModel.Span{}, fmt.Errorf("invalid value of tag %s: %w", tag.Key, err)
		}
		tags[i] = spanModel.Tag{Key: tag.Key, Value: value}
	}

	return spanModel.Span{
		SpanID:        sr.SpanId,
		ParentSpanID:  sr.ParentSpanId,
		TraceID:       sr.TraceId,
		ServiceName:   sr.ServiceName,
		OperationName: sr.OperationName,
		Duration:      duration,
		Tags:          tags,
	}, nil
}

func tagValueToString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	default:
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		if err := encoder.Encode(v); err != nil {
			return "", err
		}
		return string(bytes.TrimSpace(buf.Bytes())), nil
	}
}
