package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vmunix/synctower/internal/catalog"
	"github.com/vmunix/synctower/internal/config"
	"github.com/vmunix/synctower/internal/history"
	"github.com/vmunix/synctower/internal/metrics"
	"github.com/vmunix/synctower/internal/mirror"
	"github.com/vmunix/synctower/internal/reconcile"
	"github.com/vmunix/synctower/internal/server"
	"github.com/vmunix/synctower/internal/transport"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

// loadConfig loads path, or the discovered config when path is empty.
// With nothing to discover the defaults are used, so a bare BASEURL
// environment variable is enough to run.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := config.Discover()
		if err != nil && os.Getenv("SYNCTOWER_CONFIG") != "" {
			return nil, err
		}
		if err != nil {
			cfg := config.Default()
			if errs := cfg.Validate(); len(errs) > 0 {
				return nil, &config.ConfigError{Errors: errs}
			}
			return cfg, nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// app is the wired object graph shared by serve and once.
type app struct {
	runner  *server.Runner
	history *history.Log
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) *app {
	httpClient := transport.NewClient(cfg.HTTP.RetryPolicy(), cfg.HTTP.Timeout.Duration, logger)

	catalogOpts := []catalog.Option{
		catalog.WithHTTPClient(httpClient),
		catalog.WithLogger(logger),
		catalog.WithRateLimit(cfg.HTTP.RateLimit.RequestsPerSecond, cfg.HTTP.RateLimit.Burst),
	}
	if !cfg.HTTP.Breaker.Disabled {
		catalogOpts = append(catalogOpts, catalog.WithBreaker(catalog.BreakerSettings{
			MaxFailures: uint32(cfg.HTTP.Breaker.MaxFailures),
			OpenTimeout: cfg.HTTP.Breaker.OpenTimeout.Duration,
		}))
	}
	source := catalog.New(cfg.Sync.BaseURL, catalogOpts...)
	store := mirror.New(cfg.Sync.BaseURL,
		mirror.WithHTTPClient(httpClient),
		mirror.WithLogger(logger),
	)

	rec := reconcile.New(source, store, reconcile.Config{BaseURL: cfg.Sync.BaseURL}, logger.With("component", "reconcile"))

	a := &app{metrics: metrics.New(nil), logger: logger}

	// History is best effort; a broken database never blocks syncing.
	var hist server.History
	if cfg.Database.Path != "" {
		h, err := history.Open(ctx, cfg.Database.Path)
		if err != nil {
			logger.Warn("run history disabled", "path", cfg.Database.Path, "error", err)
		} else {
			a.history = h
			hist = h
		}
	}

	a.runner = server.NewRunner(rec, hist, a.metrics, server.Config{
		Interval:         cfg.Sync.Interval.Duration,
		RunOnStartup:     cfg.Sync.RunOnStartup,
		RunTimeout:       cfg.Sync.RunTimeout.Duration,
		MetricsAddr:      cfg.Metrics.Addr,
		HistoryRetention: cfg.Database.Retention.Duration,
	}, logger)
	return a
}

func (a *app) Close() error {
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
