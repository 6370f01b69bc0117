package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dynoinc/sprykersearch/internal/metrics"
	"github.com/dynoinc/sprykersearch/internal/otel/semconv"
	"github.com/dynoinc/sprykersearch/internal/query"
)

// pipeline describes one search flow. T is the raw backend result.
type pipeline[T any] struct {
	kind Kind
	// scoped flows validate organisations and pass them to compose and format.
	scoped   bool
	compose  func(q string, orgs []string) string
	dispatch func(ctx context.Context, q string) (T, error)
	count    func(T) (items, total int)
	format   func(T, []string) string
}

func (p pipeline[T]) execute(ctx context.Context, s *Service, req Request) (string, error) {
	q := query.Normalize(req.Query)

	var orgs []string
	if p.scoped {
		orgs = s.validator.Validate(req.Organisations)
		slog.InfoContext(ctx, "using organisations", "kind", p.kind, "organisations", orgs)
	}

	composed := p.compose(q, orgs)
	slog.InfoContext(ctx, "performing search", "kind", p.kind, "query", composed)

	raw, err := p.dispatch(ctx, composed)
	if err != nil {
		return "", err
	}

	items, total := p.count(raw)
	slog.InfoContext(ctx, "search completed", "kind", p.kind, "resultCount", items, "totalCount", total)
	trace.SpanFromContext(ctx).SetAttributes(semconv.SearchResultCountKey.Int(items))

	text := p.format(raw, orgs)
	slog.DebugContext(ctx, "search results formatted for display", "kind", p.kind)

	return text, nil
}

// run is the error boundary shared by every flow: any error or panic from any
// stage is logged, reported and turned into the failure text for the kind.
func run[T any](ctx context.Context, s *Service, p pipeline[T], req Request) string {
	start := time.Now()
	attrs := []attribute.KeyValue{
		semconv.SearchKindKey.String(string(p.kind)),
		semconv.SearchQueryKey.String(req.Query),
		semconv.SearchOrganisationsKey.StringSlice(req.Organisations),
	}
	if s.forceTrace {
		attrs = append(attrs, semconv.ForceTraceKey.Bool(true))
	}
	ctx, span := s.tracer.Start(ctx, "search "+string(p.kind), trace.WithAttributes(attrs...))
	defer span.End()

	slog.InfoContext(ctx, "received search request", "kind", p.kind, "query", req.Query, "organisations", req.Organisations)

	text, err := guard(func() (string, error) { return p.execute(ctx, s, req) })
	if err != nil {
		slog.ErrorContext(ctx, "error in "+string(p.kind), "error", err, "stack", stackOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		capture(ctx, err)
		s.metrics.Request(ctx, string(p.kind), metrics.OutcomeError, time.Since(start))

		return p.kind.Failure(err)
	}

	s.metrics.Request(ctx, string(p.kind), metrics.OutcomeSuccess, time.Since(start))
	return text
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprint(e.value) }

// guard calls fn, converting a panic into a *panicError.
func guard[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()

	return fn()
}

func stackOf(err error) string {
	var pe *panicError
	if errors.As(err, &pe) {
		return string(pe.stack)
	}
	return string(debug.Stack())
}

func capture(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
