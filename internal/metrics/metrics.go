// Package metrics exposes Prometheus metrics for reconciliation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vmunix/synctower/internal/reconcile"
)

const namespace = "synctower"

// Metrics holds the collectors for one registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	Runs           *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	LastRun        prometheus.Gauge
	ItemsSynced    *prometheus.CounterVec
	ItemsFailed    *prometheus.CounterVec
	Deficit        *prometheus.GaugeVec
	PagesFailed    *prometheus.CounterVec
	CheckFailed    *prometheus.CounterVec
	RunsOverlapped prometheus.Counter
}

// New registers the collectors with reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Reconciliation runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of reconciliation runs in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		ItemsSynced: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_synced_total",
			Help:      "Items appended to the mirror.",
		}, []string{"category"}),
		ItemsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_failed_total",
			Help:      "Items whose append to the mirror failed.",
		}, []string{"category"}),
		Deficit: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deficit",
			Help:      "Remote total minus mirror count at the last run.",
		}, []string{"category"}),
		PagesFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_pages_failed_total",
			Help:      "Catalog listing pages skipped after a fetch failure.",
		}, []string{"category"}),
		CheckFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "existence_checks_failed_total",
			Help:      "Categories skipped because the mirror existence check failed.",
		}, []string{"category"}),
		RunsOverlapped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_overlapped_total",
			Help:      "Scheduled ticks dropped because a run was still in progress.",
		}),
	}
}

// Observe records a finished run.
func (m *Metrics) Observe(r *reconcile.Report) {
	m.Runs.WithLabelValues(string(r.Outcome)).Inc()
	m.RunDuration.Observe(r.Duration().Seconds())
	m.LastRun.Set(float64(r.FinishedAt.UnixNano()) / float64(time.Second))

	for _, c := range r.Categories {
		label := string(c.Category)
		m.Deficit.WithLabelValues(label).Set(float64(c.Deficit))
		m.ItemsSynced.WithLabelValues(label).Add(float64(c.Synced))
		m.ItemsFailed.WithLabelValues(label).Add(float64(c.Failed))
		m.PagesFailed.WithLabelValues(label).Add(float64(c.PagesFailed))
		if c.CheckFailed {
			m.CheckFailed.WithLabelValues(label).Inc()
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
