package trace

import (
	"context"
	"fmt"

	sentryotel "github.com/getsentry/sentry-go/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
)

type Config struct {
	// OTLP/HTTP collector endpoint (host:port). Spans are dropped when empty.
	Endpoint   string  `split_words:"true"`
	Insecure   bool    `default:"false"`
	SampleRate float64 `split_words:"true" default:"0.1"`
	// Sample every search span regardless of SampleRate.
	Force bool `default:"false"`
}

// NewProvider builds the tracer provider. With sentry set, finished spans are
// also handed to the Sentry span processor.
func NewProvider(ctx context.Context, cfg Config, sentry bool) (*sdkTrace.TracerProvider, error) {
	exporter := NewNoOpSpanExporter()
	if cfg.Endpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}

		var err error
		exporter, err = otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating OTLP exporter: %w", err)
		}
	}

	opts := []sdkTrace.TracerProviderOption{
		sdkTrace.WithBatcher(exporter),
		sdkTrace.WithSampler(NewForceBasedSampler(cfg.SampleRate)),
	}
	if sentry {
		opts = append(opts, sdkTrace.WithSpanProcessor(sentryotel.NewSentrySpanProcessor()))
	}

	return sdkTrace.NewTracerProvider(opts...), nil
}
