package postgresengine

import (
	"context"
	"time"

	"github.com/querymill/readmodel-go/readmodel"
	"github.com/querymill/readmodel-go/readmodel/postgresengine/internal/adapters"
)

const (
	metricStoreDuration = "readmodel.store.query.duration"
	metricStoreErrors   = "readmodel.store.query.errors"
	metricLabelAction   = "action"
	spanNameStoreQuery  = "readmodel.store.query"
)

func (ds DocumentStore) startSpan(ctx context.Context, collection string, action string) (context.Context, readmodel.SpanContext) {
	if ds.tracingCollector == nil {
		return ctx, nil
	}

	return ds.tracingCollector.StartSpan(ctx, spanNameStoreQuery, map[string]string{
		logAttrCollection: collection,
		metricLabelAction: action,
	})
}

func (ds DocumentStore) finishSpan(span readmodel.SpanContext, err error) {
	if ds.tracingCollector == nil || span == nil {
		return
	}

	status := readmodel.StatusSuccess
	if err != nil {
		status = readmodel.StatusError
	}

	ds.tracingCollector.FinishSpan(span, status, nil)
}

// logQueryWithDuration logs SQL together with its execution time, at debug.
func (ds DocumentStore) logQueryWithDuration(sqlQuery sqlQueryString, action string, duration time.Duration) {
	if ds.contextualLogger != nil {
		ds.contextualLogger.DebugContext(context.Background(), logMsgSQLExecuted+action,
			logAttrQuery, sqlQuery,
			logAttrDurationMS, toMilliseconds(duration))
		return
	}

	if ds.logger != nil {
		ds.logger.Debug(logMsgSQLExecuted+action,
			logAttrQuery, sqlQuery,
			logAttrDurationMS, toMilliseconds(duration))
	}
}

// logOperation logs a completed store operation at info.
func (ds DocumentStore) logOperation(msg string, args ...any) {
	if ds.contextualLogger != nil {
		ds.contextualLogger.InfoContext(context.Background(), logMsgOperation+msg, args...)
		return
	}

	if ds.logger != nil {
		ds.logger.Info(logMsgOperation+msg, args...)
	}
}

func (ds DocumentStore) logError(msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if ds.contextualLogger != nil {
		ds.contextualLogger.ErrorContext(context.Background(), msg, allArgs...)
		return
	}

	if ds.logger != nil {
		ds.logger.Error(msg, allArgs...)
	}
}

func (ds DocumentStore) recordDurationMetrics(ctx context.Context, action string, duration time.Duration) {
	if ds.metricsCollector == nil {
		return
	}

	labels := map[string]string{metricLabelAction: action}

	if contextual, ok := ds.metricsCollector.(readmodel.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricStoreDuration, duration, labels)
		return
	}

	ds.metricsCollector.RecordDuration(metricStoreDuration, duration, labels)
}

func (ds DocumentStore) recordErrorMetrics(ctx context.Context, action string) {
	if ds.metricsCollector == nil {
		return
	}

	labels := map[string]string{metricLabelAction: action}

	if contextual, ok := ds.metricsCollector.(readmodel.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metricStoreErrors, labels)
		return
	}

	ds.metricsCollector.IncrementCounter(metricStoreErrors, labels)
}

func (ds DocumentStore) closeRows(rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		ds.logError(logMsgCloseRowsFailed, err)
	}
}

func toMilliseconds(duration time.Duration) float64 {
	return float64(duration.Nanoseconds()) / 1e6
}
