package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader sdkmetric.Reader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func TestRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	r, err := New(provider)
	require.NoError(t, err)

	ctx := context.Background()
	r.Request(ctx, "search", OutcomeSuccess, 200*time.Millisecond)
	r.Request(ctx, "search", OutcomeError, time.Second)
	r.Request(ctx, "docs search", OutcomeSuccess, time.Second)
	r.FetchFailed(ctx)
	r.FetchFailed(ctx)

	metrics := collect(t, reader)

	requests, ok := metrics["sprykersearch.requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, requests.DataPoints, 3)
	for _, dp := range requests.DataPoints {
		kind, _ := dp.Attributes.Value(attribute.Key("kind"))
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		require.Equal(t, int64(1), dp.Value, "%s/%s", kind.AsString(), outcome.AsString())
	}

	failures, ok := metrics["sprykersearch.doc_fetch.failures"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, failures.DataPoints, 1)
	require.Equal(t, int64(2), failures.DataPoints[0].Value)

	duration, ok := metrics["sprykersearch.request.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 2)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.Request(context.Background(), "search", OutcomeSuccess, time.Second)
		r.FetchFailed(context.Background())
	})
}
