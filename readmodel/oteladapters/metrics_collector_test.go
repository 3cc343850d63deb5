package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/querymill/readmodel-go/readmodel/oteladapters"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *oteladapters.MetricsCollector) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return reader, oteladapters.NewMetricsCollector(provider.Meter("test"))
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	reader, collector := newTestMeter(t)

	collector.RecordDuration("readmodel.dispatch.duration", 150*time.Millisecond, map[string]string{
		"query_type": "PlayersByTeam",
		"status":     "success",
	})

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	histogram := findHistogramMetric(t, resourceMetrics, "readmodel.dispatch.duration")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001, "durations are recorded in seconds")

	queryType, found := dataPoint.Attributes.Value(attribute.Key("query_type"))
	require.True(t, found)
	assert.Equal(t, "PlayersByTeam", queryType.AsString())
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	reader, collector := newTestMeter(t)

	collector.IncrementCounter("readmodel.dispatch.errors", map[string]string{"status": "error"})
	collector.IncrementCounter("readmodel.dispatch.errors", map[string]string{"status": "error"})

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	sum := findCounterMetric(t, resourceMetrics, "readmodel.dispatch.errors")
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	reader, collector := newTestMeter(t)

	collector.RecordValue("readmodel.sessions.active", 5, nil)

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	gauge := findGaugeMetric(t, resourceMetrics, "readmodel.sessions.active")
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 5.0, gauge.DataPoints[0].Value, 0.001)
}

func Test_MetricsCollector_ContextVariants_RecordTheSameInstruments(t *testing.T) {
	reader, collector := newTestMeter(t)
	ctx := context.Background()

	collector.RecordDurationContext(ctx, "readmodel.store.query.duration", time.Second, nil)
	collector.IncrementCounterContext(ctx, "readmodel.store.query.errors", nil)
	collector.RecordValueContext(ctx, "readmodel.store.rows", 42, nil)

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	histogram := findHistogramMetric(t, resourceMetrics, "readmodel.store.query.duration")
	assert.Len(t, histogram.DataPoints, 1)

	sum := findCounterMetric(t, resourceMetrics, "readmodel.store.query.errors")
	assert.Len(t, sum.DataPoints, 1)

	gauge := findGaugeMetric(t, resourceMetrics, "readmodel.store.rows")
	assert.Len(t, gauge.DataPoints, 1)
}

func findHistogramMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Histogram[float64] {
	t.Helper()

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				histogram, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok, "metric %s should be a float64 histogram", name)
				return histogram
			}
		}
	}

	t.Fatalf("histogram metric %s not found", name)
	return metricdata.Histogram[float64]{}
}

func findCounterMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "metric %s should be an int64 sum", name)
				return sum
			}
		}
	}

	t.Fatalf("counter metric %s not found", name)
	return metricdata.Sum[int64]{}
}

func findGaugeMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Gauge[float64] {
	t.Helper()

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				gauge, ok := m.Data.(metricdata.Gauge[float64])
				require.True(t, ok, "metric %s should be a float64 gauge", name)
				return gauge
			}
		}
	}

	t.Fatalf("gauge metric %s not found", name)
	return metricdata.Gauge[float64]{}
}
