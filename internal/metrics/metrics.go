// Package metrics records search outcomes through the OpenTelemetry metric API
// and exposes them in Prometheus format.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/dynoinc/sprykersearch"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder is safe to use as a nil pointer, in which case nothing is recorded.
type Recorder struct {
	requests      metric.Int64Counter
	duration      metric.Float64Histogram
	fetchFailures metric.Int64Counter
}

func New(provider metric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(meterName)

	requests, err := meter.Int64Counter("sprykersearch.requests",
		metric.WithDescription("Search requests by kind and outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}

	duration, err := meter.Float64Histogram("sprykersearch.request.duration",
		metric.WithDescription("Search request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10))
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	fetchFailures, err := meter.Int64Counter("sprykersearch.doc_fetch.failures",
		metric.WithDescription("Documentation pages that could not be fetched"))
	if err != nil {
		return nil, fmt.Errorf("creating fetch failures counter: %w", err)
	}

	return &Recorder{
		requests:      requests,
		duration:      duration,
		fetchFailures: fetchFailures,
	}, nil
}

func (r *Recorder) Request(ctx context.Context, kind, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}

	r.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
	r.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("kind", kind)))
}

func (r *Recorder) FetchFailed(ctx context.Context) {
	if r == nil {
		return
	}

	r.fetchFailures.Add(ctx, 1)
}

// NewPrometheusProvider returns a meter provider whose instruments are
// registered with the default Prometheus registry.
func NewPrometheusProvider() (*sdkmetric.MeterProvider, error) {
	exporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}

func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}
