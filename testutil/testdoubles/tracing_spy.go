package testdoubles

import (
	"context"
	"sync"

	"github.com/querymill/readmodel-go/readmodel"
)

// SpySpan is the SpanContext implementation recorded by TracingCollectorSpy.
type SpySpan struct {
	Name       string
	Attributes map[string]string
	Status     string
	Finished   bool
}

// SetStatus implements the SpanContext interface for testing.
func (s *SpySpan) SetStatus(status string) {
	s.Status = status
}

// AddAttribute implements the SpanContext interface for testing.
func (s *SpySpan) AddAttribute(key, value string) {
	s.Attributes[key] = value
}

var _ readmodel.SpanContext = (*SpySpan)(nil)

// TracingCollectorSpy captures span lifecycles for testing.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []*SpySpan
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy instance.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, readmodel.SpanContext) {
	span := &SpySpan{Name: name, Attributes: make(map[string]string, len(attrs))}
	for key, value := range attrs {
		span.Attributes[key] = value
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.spans = append(s.spans, span)

	return ctx, span
}

// FinishSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) FinishSpan(spanCtx readmodel.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpan)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range attrs {
		span.Attributes[key] = value
	}
	span.Status = status
	span.Finished = true
}

// Spans returns all recorded spans.
func (s *TracingCollectorSpy) Spans() []*SpySpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*SpySpan(nil), s.spans...)
}

// Reset clears all recorded spans.
func (s *TracingCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans = s.spans[:0]
}

var _ readmodel.TracingCollector = (*TracingCollectorSpy)(nil)
