package trace

import (
	"context"

	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
)

// noOpSpanExporter drops every span. It is used when no collector endpoint is
// configured so spans still reach the Sentry span processor.
type noOpSpanExporter struct{}

func NewNoOpSpanExporter() sdkTrace.SpanExporter {
	return noOpSpanExporter{}
}

func (noOpSpanExporter) ExportSpans(context.Context, []sdkTrace.ReadOnlySpan) error {
	return nil
}

func (noOpSpanExporter) Shutdown(context.Context) error {
	return nil
}
