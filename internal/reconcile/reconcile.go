package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vmunix/synctower/internal/catalog"
)

// ErrNotConfigured is reported when no base URL is set. Runs are skipped, not failed.
var ErrNotConfigured = errors.New("base url not configured")

// Config for the reconciler.
type Config struct {
	BaseURL string // Empty makes every run a no-op
}

// Reconciler runs the full compare, fetch, filter and append cycle.
type Reconciler struct {
	source    Source
	mirror    Mirror
	paginator *Paginator
	filter    *Filter
	config    Config
	log       *slog.Logger

	now   func() time.Time
	newID func() string
}

// New creates a reconciler.
func New(source Source, mirror Mirror, cfg Config, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		source:    source,
		mirror:    mirror,
		paginator: NewPaginator(source, log),
		filter:    NewFilter(mirror, log),
		config:    cfg,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Run performs one reconciliation. Failing to fetch either first page or to
// read mirror counts aborts the run and returns the cause alongside the report.
// Everything after that is isolated per category and per item.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     r.newID(),
		StartedAt: r.now(),
	}
	log := r.log.With("run_id", report.RunID)
	log.Info("starting sync run")

	if r.config.BaseURL == "" {
		log.Info("base url not configured, skipping run")
		r.finish(report, OutcomeSkipped, ErrNotConfigured.Error())
		return report, nil
	}

	first := make(map[catalog.Category]*catalog.Page, len(catalog.Categories))
	for _, c := range catalog.Categories {
		page, err := r.source.FetchPage(ctx, c, 1)
		if err != nil {
			log.Error("fetch first page failed, aborting run", "category", c, "error", err)
			r.finish(report, OutcomeAborted, err.Error())
			return report, fmt.Errorf("fetch %s page 1: %w", c, err)
		}
		first[c] = page
	}

	counts, err := r.mirror.ReadCounts(ctx)
	if err != nil {
		log.Error("read mirror counts failed, aborting run", "error", err)
		r.finish(report, OutcomeAborted, err.Error())
		return report, fmt.Errorf("read mirror counts: %w", err)
	}

	items := make(map[catalog.Category][]catalog.Item, len(catalog.Categories))
	for _, c := range catalog.Categories {
		page := first[c]
		report.Categories = append(report.Categories, CategoryReport{
			Category:    c,
			RemoteTotal: page.TotalResults,
			MirrorCount: counts.For(c),
			Deficit:     page.TotalResults - counts.For(c),
		})
		items[c] = append([]catalog.Item(nil), page.Items...)
	}
	log.Info("computed sync deficits",
		"movies", report.Category(catalog.Movie).Deficit,
		"shows", report.Category(catalog.Show).Deficit,
	)

	for _, c := range catalog.Categories {
		cr := report.Category(c)
		if cr.Deficit > catalog.PageSize {
			more, failed := r.paginator.Fetch(ctx, c, cr.Deficit)
			items[c] = append(items[c], more...)
			cr.PagesFailed = failed
		}
		cr.Fetched = len(items[c])
	}

	for _, c := range catalog.Categories {
		r.syncCategory(ctx, log, report.Category(c), items[c])
	}

	r.finish(report, OutcomeCompleted, "")
	log.Info("sync run finished",
		"synced", report.Synced(),
		"failed", report.Failed(),
		"duration_ms", report.Duration().Milliseconds(),
	)
	return report, nil
}

// syncCategory filters items and appends the survivors one at a time.
func (r *Reconciler) syncCategory(ctx context.Context, log *slog.Logger, cr *CategoryReport, items []catalog.Item) {
	c := cr.Category
	if len(items) == 0 || cr.Deficit <= 0 {
		cr.Skipped = true
		log.Info("no new " + c.Plural() + " to sync")
		return
	}

	cr.Candidates = min(len(items), cr.Deficit)
	toSync, err := r.filter.Apply(ctx, c, items, cr.Deficit)
	if err != nil {
		cr.Error = err.Error()
		cr.CheckFailed = true
		log.Error("failed to fetch new ids, skipping category", "severity", "critical", "category", c, "error", err)
		return
	}

	log.Info("syncing new ids", "category", c, "count", len(toSync))
	for _, it := range toSync {
		if ctx.Err() != nil {
			cr.Error = ctx.Err().Error()
			log.Warn("sync interrupted", "category", c, "remaining", len(toSync)-cr.Synced-cr.Failed)
			return
		}
		if err := r.mirror.Append(ctx, c, it); err != nil {
			cr.Failed++
			log.Error("failed to sync item", "category", c, "id", it.ID, "title", it.Title, "error", err)
			continue
		}
		cr.Synced++
		log.Info("synced item", "category", c, "id", it.ID, "title", it.Title)
	}
}

func (r *Reconciler) finish(report *Report, outcome Outcome, reason string) {
	report.Outcome = outcome
	report.Reason = reason
	report.FinishedAt = r.now()
}
