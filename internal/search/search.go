// Package search runs the three search flows exposed as tools: packages
// (GitHub repository search), code (GitHub code search) and docs
// (documentation index search plus a content fetch per hit).
//
// Every flow is a pipeline of stages (normalize, validate organisations,
// compose, dispatch, format) run behind one error boundary, so callers always
// get text back and never an error.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dynoinc/sprykersearch/internal/config"
	"github.com/dynoinc/sprykersearch/internal/format"
	"github.com/dynoinc/sprykersearch/internal/metrics"
	"github.com/dynoinc/sprykersearch/internal/otel/semconv"
	"github.com/dynoinc/sprykersearch/internal/query"
	"github.com/dynoinc/sprykersearch/internal/results"
)

type RepositorySearcher interface {
	SearchRepositories(ctx context.Context, query string) (results.RepositoryPage, error)
}

type CodeSearcher interface {
	SearchCode(ctx context.Context, query string) (results.CodePage, error)
}

// DocFetcher returns the markdown source stored at a documentation repository
// path such as "/docs/scos/dev/payment.md".
type DocFetcher interface {
	FetchDoc(ctx context.Context, path string) (string, error)
}

type DocsIndex interface {
	SearchDocs(ctx context.Context, query string) ([]results.DocHit, error)
}

type Request struct {
	Query         string   `json:"query"`
	Organisations []string `json:"organisations,omitempty"`
}

// Kind names a search flow in logs, metrics and error responses.
type Kind string

const (
	KindPackages Kind = "search"
	KindCode     Kind = "code search"
	KindDocs     Kind = "docs search"
)

// Failure renders err as the response text of a failed search.
func (k Kind) Failure(err error) string {
	return fmt.Sprintf("Error performing %s: %s", k, err.Error())
}

type Backends struct {
	Repositories RepositorySearcher
	Code         CodeSearcher
	Docs         DocFetcher
	Index        DocsIndex
}

type Option func(*Service)

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithForceTrace marks every search span with force_trace so it is sampled
// regardless of the configured sample rate.
func WithForceTrace(force bool) Option {
	return func(s *Service) { s.forceTrace = force }
}

const tracerName = "github.com/dynoinc/sprykersearch/internal/search"

type Service struct {
	cfg       config.Search
	validator *query.Validator
	composer  *query.Composer
	backends  Backends
	tracer    trace.Tracer
	metrics   *metrics.Recorder

	forceTrace bool

	packages pipeline[results.RepositoryPage]
	code     pipeline[results.CodePage]
	docs     pipeline[[]results.DocResult]
}

func New(cfg config.Search, backends Backends, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		validator: query.NewValidator(cfg),
		composer:  query.NewComposer(cfg),
		backends:  backends,
		tracer:    otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.packages = pipeline[results.RepositoryPage]{
		kind:    KindPackages,
		scoped:  true,
		compose: s.composer.Packages,
		dispatch: func(ctx context.Context, q string) (results.RepositoryPage, error) {
			return s.backends.Repositories.SearchRepositories(ctx, q)
		},
		count: func(page results.RepositoryPage) (int, int) { return len(page.Items), page.TotalCount },
		format: func(page results.RepositoryPage, orgs []string) string {
			return format.Repositories(page.Items, orgs)
		},
	}

	s.code = pipeline[results.CodePage]{
		kind:    KindCode,
		scoped:  true,
		compose: s.composer.Code,
		dispatch: func(ctx context.Context, q string) (results.CodePage, error) {
			return s.backends.Code.SearchCode(ctx, q)
		},
		count: func(page results.CodePage) (int, int) { return len(page.Items), page.TotalCount },
		format: func(page results.CodePage, orgs []string) string {
			return format.Code(page.Items, orgs)
		},
	}

	s.docs = pipeline[[]results.DocResult]{
		kind:     KindDocs,
		compose:  func(q string, _ []string) string { return q },
		dispatch: s.searchDocs,
		count:    func(docs []results.DocResult) (int, int) { return len(docs), len(docs) },
		format:   func(docs []results.DocResult, _ []string) string { return format.Docs(docs) },
	}

	return s
}

// Packages searches GitHub repositories within the allowed organisations.
func (s *Service) Packages(ctx context.Context, req Request) string {
	return run(ctx, s, s.packages, req)
}

// Code searches source files within the allowed organisations.
func (s *Service) Code(ctx context.Context, req Request) string {
	return run(ctx, s, s.code, req)
}

// Docs searches the documentation index and returns the markdown source of
// every hit. Organisations in req are ignored.
func (s *Service) Docs(ctx context.Context, req Request) string {
	return run(ctx, s, s.docs, req)
}

func (s *Service) searchDocs(ctx context.Context, q string) ([]results.DocResult, error) {
	hits, err := s.backends.Index.SearchDocs(ctx, q)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "documentation index search completed", "query", q, "hits", len(hits))

	return s.fetchDocs(ctx, hits), nil
}

// fetchDocs fetches every hit concurrently. A failed fetch becomes an error
// entry keyed by the rewritten path; a successful one is keyed by the hit URL.
func (s *Service) fetchDocs(ctx context.Context, hits []results.DocHit) []results.DocResult {
	paths := make([]string, len(hits))
	for i, hit := range hits {
		paths[i] = query.DocPath(hit.URL, s.cfg.DocsHost())
	}

	outcomes := settle(ctx, s.cfg.FetchConcurrency(), paths, s.backends.Docs.FetchDoc)

	docs := make([]results.DocResult, len(hits))
	failed := 0
	for i, o := range outcomes {
		if o.err != nil {
			slog.ErrorContext(ctx, "failed to fetch documentation page", "path", paths[i], "error", o.err)
			s.metrics.FetchFailed(ctx)
			docs[i] = results.Failed(paths[i], o.err)
			failed++
			continue
		}

		docs[i] = results.Fetched(hits[i].URL, o.value)
	}

	if failed > 0 {
		trace.SpanFromContext(ctx).SetAttributes(semconv.SearchFailedFetchesKey.Int(failed))
	}

	return docs
}
