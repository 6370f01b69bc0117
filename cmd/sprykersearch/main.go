package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/earthboundkid/versioninfo/v2"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/lmittmann/tint"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/dynoinc/sprykersearch/internal/algolia"
	"github.com/dynoinc/sprykersearch/internal/config"
	"github.com/dynoinc/sprykersearch/internal/github_integration"
	"github.com/dynoinc/sprykersearch/internal/metrics"
	"github.com/dynoinc/sprykersearch/internal/otel/trace"
	"github.com/dynoinc/sprykersearch/internal/search"
	"github.com/dynoinc/sprykersearch/internal/tools"
)

type Config struct {
	LogLevel slog.Level `split_words:"true" default:"info"`

	// Transport configuration
	Transport   string `default:"stdio"`
	HTTPAddr    string `split_words:"true" default:"127.0.0.1:5001"`
	MetricsAddr string `split_words:"true"`

	// Search configuration
	SearchConfigFile string `split_words:"true"`
	DocsIndex        string `split_words:"true" default:"algolia"`

	// Error reporting
	SentryDSN string `envconfig:"SENTRY_DSN"`

	GitHub  github_integration.Config
	Algolia algolia.Config
	Tracing trace.Config
}

func main() {
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		envconfig.Usage("sprykersearch", &Config{})
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fatal("error loading .env file", err)
		}
	}

	var c Config
	if err := envconfig.Process("sprykersearch", &c); err != nil {
		fatal("error loading configuration", err)
	}

	// stdout carries the stdio transport, so logs go to stderr.
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      c.LogLevel,
		TimeFormat: time.Kitchen,
	})))
	slog.Info("Running version", "version", versioninfo.Short())

	if err := run(c); err != nil && !errors.Is(err, context.Canceled) {
		fatal("error running server", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func run(c Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sentry setup
	if c.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			Release:          versioninfo.Short(),
			EnableTracing:    true,
			TracesSampleRate: c.Tracing.SampleRate,
		}); err != nil {
			return fmt.Errorf("error setting up Sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Tracing setup
	tp, err := trace.NewProvider(ctx, c.Tracing, c.SentryDSN != "")
	if err != nil {
		return fmt.Errorf("error setting up tracing: %w", err)
	}
	otel.SetTracerProvider(tp)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Warn("error shutting down tracer provider", "error", err)
		}
	}()

	// Metrics setup
	mp, err := metrics.NewPrometheusProvider()
	if err != nil {
		return fmt.Errorf("error setting up metrics: %w", err)
	}
	otel.SetMeterProvider(mp)
	recorder, err := metrics.New(mp)
	if err != nil {
		return fmt.Errorf("error setting up metrics: %w", err)
	}

	// Search setup
	searchCfg, err := config.Load(c.SearchConfigFile)
	if err != nil {
		return fmt.Errorf("error loading search configuration: %w", err)
	}

	ghClient, err := github_integration.NewClient(c.GitHub)
	if err != nil {
		return fmt.Errorf("error setting up GitHub client: %w", err)
	}
	backend := github_integration.NewBackend(ghClient, searchCfg)

	var index search.DocsIndex
	switch c.DocsIndex {
	case "algolia":
		index = algolia.New(c.Algolia, searchCfg.HitsPerPage())
	case "github":
		index = github_integration.NewDocsIndex(backend, searchCfg)
	default:
		return fmt.Errorf("unknown docs index %q", c.DocsIndex)
	}
	slog.Info("Using documentation index", "index", c.DocsIndex)

	svc := search.New(searchCfg, search.Backends{
		Repositories: backend,
		Code:         backend,
		Docs:         backend,
		Index:        index,
	}, search.WithTracerProvider(tp),
		search.WithMetrics(recorder),
		search.WithForceTrace(c.Tracing.Force),
	)

	mcpServer := tools.Server(svc)

	wg, ctx := errgroup.WithContext(ctx)

	// Transport setup
	var shutdown func(context.Context) error
	switch c.Transport {
	case "stdio":
		stdio := server.NewStdioServer(mcpServer)
		stdio.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))
		wg.Go(func() error {
			slog.Info("MCP server connected and ready to process requests", "transport", "stdio")
			defer cancel()
			return stdio.Listen(ctx, os.Stdin, os.Stdout)
		})
	case "sse":
		sse := server.NewSSEServer(mcpServer)
		shutdown = sse.Shutdown
		wg.Go(func() error {
			slog.Info("Starting MCP SSE server", "addr", c.HTTPAddr)
			if err := sse.Start(c.HTTPAddr); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("SSE server error: %w", err)
			}

			return nil
		})
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}

	var metricsServer *http.Server
	if c.MetricsAddr != "" {
		metricsServer = &http.Server{
			BaseContext: func(listener net.Listener) context.Context { return ctx },
			Addr:        c.MetricsAddr,
			Handler:     metrics.Handler(),
		}
		wg.Go(func() error {
			slog.Info("Starting metrics server", "addr", c.MetricsAddr)
			if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server error: %w", err)
			}

			return nil
		})
	}

	wg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sig)

		select {
		case <-ctx.Done():
		case <-sig:
			slog.Info("Shutting down")
			cancel()
		}

		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()

		var errs []error
		if shutdown != nil {
			errs = append(errs, shutdown(shutdownCtx))
		}
		if metricsServer != nil {
			errs = append(errs, metricsServer.Shutdown(shutdownCtx))
		}

		return errors.Join(errs...)
	})

	return wg.Wait()
}
