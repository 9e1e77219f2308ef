package reconcile

import (
	"time"

	"github.com/vmunix/synctower/internal/catalog"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeAborted   Outcome = "aborted"
)

// Report summarizes one reconciliation run.
type Report struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Outcome    Outcome          `json:"outcome"`
	Reason     string           `json:"reason,omitempty"`
	Categories []CategoryReport `json:"categories,omitempty"`
}

// CategoryReport is the per-category part of a Report.
type CategoryReport struct {
	Category    catalog.Category `json:"category"`
	RemoteTotal int              `json:"remote_total"`
	MirrorCount int              `json:"mirror_count"`
	Deficit     int              `json:"deficit"`
	Fetched     int              `json:"fetched"`
	PagesFailed int              `json:"pages_failed"`
	Candidates  int              `json:"candidates"`
	Synced      int              `json:"synced"`
	Failed      int              `json:"failed"`
	Skipped     bool             `json:"skipped"`
	CheckFailed bool             `json:"check_failed,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Category returns the report for c, or nil if the run never reached it.
func (r *Report) Category(c catalog.Category) *CategoryReport {
	for i := range r.Categories {
		if r.Categories[i].Category == c {
			return &r.Categories[i]
		}
	}
	return nil
}

// Synced returns the number of items appended across categories.
func (r *Report) Synced() int {
	n := 0
	for _, c := range r.Categories {
		n += c.Synced
	}
	return n
}

// Failed returns the number of failed appends across categories.
func (r *Report) Failed() int {
	n := 0
	for _, c := range r.Categories {
		n += c.Failed
	}
	return n
}
