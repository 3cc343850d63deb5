package readmodel

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"time"
)

const (
	spanNameDispatch        = "readmodel.dispatch"
	metricDispatchDuration  = "readmodel.dispatch.duration"
	metricDispatchErrors    = "readmodel.dispatch.errors"
	logMsgDispatchStarted   = "query dispatch started"
	logMsgDispatchCompleted = "query dispatch completed"
	logMsgDispatchFailed    = "query dispatch failed"
	logMsgNoHandler         = "no handler registered: deployment configuration defect"
	logAttrQueryType        = "query_type"
	logAttrDataType         = "data_type"
	logAttrOrderBy          = "order_by"
	logAttrSkip             = "skip"
	logAttrTake             = "take"
	logAttrError            = "error"
	logAttrDurationMS       = "duration_ms"
	logAttrTotalCount       = "total_count"
	logAttrItemCount        = "item_count"
	labelQueryType          = "query_type"
	labelStatus             = "status"
)

// Execution carries the per-request parameters the Dispatcher resolved for a
// handler: the target collection, the compiled ordering, pagination bounds,
// and the storage session owned by this request.
type Execution struct {
	Collection CollectionDescriptor
	Ordering   OrderSpec
	Skip       int
	Take       *int
	Session    Session
}

// Handler executes one query shape's filters against storage. Exactly one
// handler is bound to each shape type. Implementations validate the supplied
// collection, apply their shape's filters as a conjunction, compute the
// total count before pagination, then apply ordering and skip/take.
type Handler[Q Query] interface {
	Handle(ctx context.Context, query Q, exec Execution) (Result, error)
}

// handlerEntry is the registration record for one shape type. The invoke
// closure re-establishes the concrete shape type that was erased when the
// entry went into the registry.
type handlerEntry struct {
	queryType string
	invoke    func(ctx context.Context, query Query, exec Execution) (Result, error)
}

// HandlerRegistry binds each query shape's runtime type to exactly one
// registered handler. It is populated at startup via Register and immutable
// once the Dispatcher starts serving; adding a new shape and handler pair
// never requires touching the Dispatcher.
type HandlerRegistry struct {
	byShapeType map[reflect.Type]handlerEntry
}

// NewHandlerRegistry creates an empty HandlerRegistry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{byShapeType: make(map[reflect.Type]handlerEntry)}
}

// Register binds a handler to the shape type Q. The type token is captured
// from the type parameter, so registration stays compile-time checked while
// dispatch stays generic. Registering a second handler for the same shape
// type fails: dispatch must never silently pick an arbitrary handler.
func Register[Q Query](registry *HandlerRegistry, handler Handler[Q]) error {
	if registry == nil {
		return ErrNilHandlerRegistry
	}

	var zero Q
	shapeType := reflect.TypeOf(zero)
	if shapeType == nil {
		return ErrInvalidHandlerShape
	}

	if _, exists := registry.byShapeType[shapeType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, shapeType)
	}

	registry.byShapeType[shapeType] = handlerEntry{
		queryType: zero.QueryType(),
		invoke: func(ctx context.Context, query Query, exec Execution) (Result, error) {
			concrete, matches := query.(Q)
			if !matches {
				return Result{}, fmt.Errorf("%w: %T", ErrNoHandlerRegistered, query)
			}

			return handler.Handle(ctx, concrete, exec)
		},
	}

	return nil
}

// QueryTypes lists the discriminators of all registered handlers, sorted.
func (r *HandlerRegistry) QueryTypes() []string {
	queryTypes := make([]string, 0, len(r.byShapeType))
	for _, entry := range r.byShapeType {
		queryTypes = append(queryTypes, entry.queryType)
	}
	slices.Sort(queryTypes)

	return queryTypes
}

// resolve looks up the entry for a decoded shape by its runtime type.
func (r *HandlerRegistry) resolve(shape Query) (handlerEntry, error) {
	entry, found := r.byShapeType[reflect.TypeOf(shape)]
	if !found {
		return handlerEntry{}, fmt.Errorf("%w: %s", ErrNoHandlerRegistered, shape.QueryType())
	}

	return entry, nil
}

// Dispatcher locates and invokes the single handler bound to a decoded query
// shape. It is read-only and stateless per call: one Dispatcher serves any
// number of concurrent requests.
type Dispatcher struct {
	handlers         *HandlerRegistry
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// DispatcherOption defines a functional option for configuring a Dispatcher.
type DispatcherOption func(*Dispatcher) error

// WithLogger sets the logger for the Dispatcher.
func WithLogger(logger Logger) DispatcherOption {
	return func(d *Dispatcher) error {
		d.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Dispatcher.
func WithContextualLogger(logger ContextualLogger) DispatcherOption {
	return func(d *Dispatcher) error {
		d.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Dispatcher.
func WithMetrics(collector MetricsCollector) DispatcherOption {
	return func(d *Dispatcher) error {
		d.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Dispatcher.
func WithTracing(collector TracingCollector) DispatcherOption {
	return func(d *Dispatcher) error {
		d.tracingCollector = collector
		return nil
	}
}

// NewDispatcher creates a Dispatcher over the supplied handler registry.
func NewDispatcher(handlers *HandlerRegistry, options ...DispatcherOption) (Dispatcher, error) {
	if handlers == nil {
		return Dispatcher{}, ErrNilHandlerRegistry
	}

	d := Dispatcher{handlers: handlers}

	for _, option := range options {
		if err := option(&d); err != nil {
			return Dispatcher{}, err
		}
	}

	return d, nil
}

// Dispatch determines the runtime type of the decoded shape, locates the
// single handler registered for exactly that type, compiles the ordering
// against the collection's whitelist, and invokes the handler.
//
// A missing handler is a configuration error, not a user error: it is logged
// at error severity even though it surfaces as a request failure.
func (d Dispatcher) Dispatch(
	ctx context.Context,
	shape Query,
	collection CollectionDescriptor,
	orderBy string,
	skip int,
	take *int,
	session Session,
) (Result, error) {

	start := time.Now()
	ctx, span := d.startSpan(ctx, shape.QueryType(), collection.Name)
	d.logStart(ctx, shape.QueryType(), collection.Name, orderBy, skip, take)

	entry, resolveErr := d.handlers.resolve(shape)
	if resolveErr != nil {
		d.logNoHandler(ctx, shape.QueryType(), resolveErr)
		d.recordOutcome(ctx, shape.QueryType(), StatusError, time.Since(start), span, resolveErr)
		return Result{}, resolveErr
	}

	if skip < 0 {
		skip = 0
	}
	if take != nil && *take < 0 {
		take = nil
	}

	exec := Execution{
		Collection: collection,
		Ordering:   CompileOrdering(orderBy, collection),
		Skip:       skip,
		Take:       take,
		Session:    session,
	}

	result, handleErr := entry.invoke(ctx, shape, exec)
	if handleErr != nil {
		d.logFailure(ctx, shape.QueryType(), handleErr)
		d.recordOutcome(ctx, shape.QueryType(), statusFor(handleErr), time.Since(start), span, handleErr)
		return Result{}, handleErr
	}

	d.logSuccess(ctx, shape.QueryType(), result, time.Since(start))
	d.recordOutcome(ctx, shape.QueryType(), StatusSuccess, time.Since(start), span, nil)

	return result, nil
}

func statusFor(err error) string {
	switch {
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	default:
		return StatusError
	}
}

func (d Dispatcher) startSpan(ctx context.Context, queryType, dataType string) (context.Context, SpanContext) {
	if d.tracingCollector == nil {
		return ctx, nil
	}

	return d.tracingCollector.StartSpan(ctx, spanNameDispatch, map[string]string{
		logAttrQueryType: queryType,
		logAttrDataType:  dataType,
	})
}

func (d Dispatcher) logStart(ctx context.Context, queryType, dataType, orderBy string, skip int, take *int) {
	args := []any{
		logAttrQueryType, queryType,
		logAttrDataType, dataType,
		logAttrOrderBy, orderBy,
		logAttrSkip, skip,
	}
	if take != nil {
		args = append(args, logAttrTake, *take)
	}

	if d.contextualLogger != nil {
		d.contextualLogger.DebugContext(ctx, logMsgDispatchStarted, args...)
		return
	}
	if d.logger != nil {
		d.logger.Debug(logMsgDispatchStarted, args...)
	}
}

func (d Dispatcher) logSuccess(ctx context.Context, queryType string, result Result, duration time.Duration) {
	args := []any{
		logAttrQueryType, queryType,
		logAttrItemCount, len(result.Items),
		logAttrTotalCount, result.TotalCount,
		logAttrDurationMS, toMilliseconds(duration),
	}

	if d.contextualLogger != nil {
		d.contextualLogger.InfoContext(ctx, logMsgDispatchCompleted, args...)
		return
	}
	if d.logger != nil {
		d.logger.Info(logMsgDispatchCompleted, args...)
	}
}

func (d Dispatcher) logFailure(ctx context.Context, queryType string, err error) {
	args := []any{logAttrQueryType, queryType, logAttrError, err.Error()}

	if d.contextualLogger != nil {
		d.contextualLogger.WarnContext(ctx, logMsgDispatchFailed, args...)
		return
	}
	if d.logger != nil {
		d.logger.Warn(logMsgDispatchFailed, args...)
	}
}

func (d Dispatcher) logNoHandler(ctx context.Context, queryType string, err error) {
	args := []any{logAttrQueryType, queryType, logAttrError, err.Error()}

	if d.contextualLogger != nil {
		d.contextualLogger.ErrorContext(ctx, logMsgNoHandler, args...)
		return
	}
	if d.logger != nil {
		d.logger.Error(logMsgNoHandler, args...)
	}
}

func (d Dispatcher) recordOutcome(
	ctx context.Context,
	queryType string,
	status string,
	duration time.Duration,
	span SpanContext,
	err error,
) {

	if d.metricsCollector != nil {
		labels := map[string]string{labelQueryType: queryType, labelStatus: status}

		if contextual, ok := d.metricsCollector.(ContextualMetricsCollector); ok {
			contextual.RecordDurationContext(ctx, metricDispatchDuration, duration, labels)
			if status != StatusSuccess {
				contextual.IncrementCounterContext(ctx, metricDispatchErrors, labels)
			}
		} else {
			d.metricsCollector.RecordDuration(metricDispatchDuration, duration, labels)
			if status != StatusSuccess {
				d.metricsCollector.IncrementCounter(metricDispatchErrors, labels)
			}
		}
	}

	if d.tracingCollector != nil && span != nil {
		attrs := map[string]string{}
		if err != nil {
			attrs[logAttrError] = err.Error()
		}
		d.tracingCollector.FinishSpan(span, status, attrs)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()/1e3) / 1e3
}
