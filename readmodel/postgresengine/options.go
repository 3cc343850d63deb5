package postgresengine

import (
	"github.com/querymill/readmodel-go/readmodel"
)

// Option defines a functional option for configuring a DocumentStore.
type Option func(*DocumentStore) error

// WithLogger sets the logger for the DocumentStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Document counts, totals, durations (production-safe)
// Error level: Critical failures that cause operation failures.
func WithLogger(logger readmodel.Logger) Option {
	return func(ds *DocumentStore) error {
		ds.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the DocumentStore.
// The collector will receive query durations and database error counts.
func WithMetrics(collector readmodel.MetricsCollector) Option {
	return func(ds *DocumentStore) error {
		ds.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the DocumentStore.
// The collector will receive a span per select or count statement,
// carrying the collection name and action as attributes.
func WithTracing(collector readmodel.TracingCollector) Option {
	return func(ds *DocumentStore) error {
		ds.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the DocumentStore.
// The contextual logger is preferred over the plain logger and receives log
// messages with context information including automatic trace/span correlation
// when tracing is enabled.
func WithContextualLogger(logger readmodel.ContextualLogger) Option {
	return func(ds *DocumentStore) error {
		ds.contextualLogger = logger
		return nil
	}
}
