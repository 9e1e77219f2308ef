// Package server runs reconciliation on a schedule and serves metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmunix/synctower/internal/metrics"
	"github.com/vmunix/synctower/internal/reconcile"
	"golang.org/x/sync/errgroup"
)

// ErrRunInProgress is returned by RunOnce while another run is active.
var ErrRunInProgress = errors.New("run already in progress")

// Reconciler performs one reconciliation.
type Reconciler interface {
	Run(ctx context.Context) (*reconcile.Report, error)
}

// History stores finished runs.
type History interface {
	Record(ctx context.Context, r *reconcile.Report) error
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Config for the runner.
type Config struct {
	Interval         time.Duration
	RunOnStartup     bool
	RunTimeout       time.Duration // 0 leaves runs unbounded
	MetricsAddr      string        // Empty disables the metrics listener
	HistoryRetention time.Duration // 0 disables pruning
}

// Runner schedules reconciliation runs. Runs never overlap.
type Runner struct {
	reconciler Reconciler
	history    History
	metrics    *metrics.Metrics
	config     Config
	logger     *slog.Logger

	running  atomic.Bool
	inflight sync.WaitGroup

	mu          sync.Mutex
	metricsAddr net.Addr
}

// NewRunner creates a new runner. history and m may be nil.
func NewRunner(rec Reconciler, history History, m *metrics.Metrics, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	return &Runner{
		reconciler: rec,
		history:    history,
		metrics:    m,
		config:     cfg,
		logger:     logger.With("component", "runner"),
	}
}

// Run starts the schedule and, when configured, the metrics listener.
// It blocks until the context is canceled or an error occurs.
func (r *Runner) Run(ctx context.Context) error {
	var ln net.Listener
	if r.config.MetricsAddr != "" && r.metrics != nil {
		var err error
		if ln, err = net.Listen("tcp", r.config.MetricsAddr); err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		r.mu.Lock()
		r.metricsAddr = ln.Addr()
		r.mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.schedule(ctx)
		return nil
	})

	if ln != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", r.metrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

		g.Go(func() error {
			r.logger.Info("metrics listener started", "addr", ln.Addr().String())
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// MetricsAddr returns the metrics listener address once Run has bound it.
func (r *Runner) MetricsAddr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metricsAddr
}

func (r *Runner) schedule(ctx context.Context) {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	r.logger.Info("scheduler started", "interval", r.config.Interval.String(), "run_on_startup", r.config.RunOnStartup)
	if r.config.RunOnStartup {
		r.trigger(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			r.inflight.Wait()
			r.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			r.trigger(ctx)
		}
	}
}

// trigger starts a run in the background unless one is already active.
func (r *Runner) trigger(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Warn("previous run still in progress, skipping tick")
		if r.metrics != nil {
			r.metrics.RunsOverlapped.Inc()
		}
		return
	}
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		defer r.running.Store(false)
		if _, err := r.run(ctx); err != nil {
			r.logger.Error("scheduled run failed", "error", err)
		}
	}()
}

// RunOnce performs a single run, recording history and metrics.
func (r *Runner) RunOnce(ctx context.Context) (*reconcile.Report, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer r.running.Store(false)
	return r.run(ctx)
}

func (r *Runner) run(ctx context.Context) (*reconcile.Report, error) {
	if r.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.RunTimeout)
		defer cancel()
	}

	report, err := r.reconciler.Run(ctx)
	if report == nil {
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.Observe(report)
	}
	r.record(ctx, report)
	return report, err
}

func (r *Runner) record(ctx context.Context, report *reconcile.Report) {
	if r.history == nil {
		return
	}
	// The run context may already be done; bookkeeping still happens.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := r.history.Record(ctx, report); err != nil {
		r.logger.Warn("failed to record run", "run_id", report.RunID, "error", err)
		return
	}
	if r.config.HistoryRetention <= 0 {
		return
	}
	n, err := r.history.Prune(ctx, r.config.HistoryRetention)
	if err != nil {
		r.logger.Warn("failed to prune history", "error", err)
		return
	}
	if n > 0 {
		r.logger.Debug("pruned run history", "removed", n)
	}
}
