// Package history persists reconciliation run reports to SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmunix/synctower/internal/migrations"
	"github.com/vmunix/synctower/internal/reconcile"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a run id is not in the log.
var ErrNotFound = errors.New("run not found")

// Run is a persisted run summary with its full report.
type Run struct {
	ID         int64
	RunID      string
	Outcome    reconcile.Outcome
	Reason     string
	Synced     int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
	Report     *reconcile.Report
}

// Log stores run reports.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; sqlite serializes anyway.
	db.SetMaxOpenConns(1)

	if err := migrations.Apply(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Log {
	return &Log{db: db}
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record persists a run report.
func (l *Log) Record(ctx context.Context, r *reconcile.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, outcome, reason, synced, failed, report, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, string(r.Outcome), r.Reason, r.Synced(), r.Failed(), string(payload),
		r.StartedAt.UTC(), r.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, c := range r.Categories {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_categories (run_id, category, remote_total, mirror_count, deficit, synced, failed, pages_failed, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, string(c.Category), c.RemoteTotal, c.MirrorCount, c.Deficit, c.Synced, c.Failed, c.PagesFailed, c.Error,
		)
		if err != nil {
			return fmt.Errorf("insert %s totals: %w", c.Category, err)
		}
	}

	return tx.Commit()
}

// Recent returns the n most recent runs, newest first.
func (l *Log) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, run_id, outcome, reason, synced, failed, report, started_at, finished_at
		FROM runs
		ORDER BY id DESC
		LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Get returns a single run by its run id.
func (l *Log) Get(ctx context.Context, runID string) (*Run, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, run_id, outcome, reason, synced, failed, report, started_at, finished_at
		FROM runs
		WHERE run_id = ?`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return &runs[0], nil
}

// Prune removes runs that started more than olderThan ago.
func (l *Log) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM run_categories
		WHERE run_id IN (SELECT run_id FROM runs WHERE started_at < ?)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune run totals: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			r       Run
			outcome string
			payload string
		)
		if err := rows.Scan(&r.ID, &r.RunID, &outcome, &r.Reason, &r.Synced, &r.Failed, &payload, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Outcome = reconcile.Outcome(outcome)
		r.Report = &reconcile.Report{}
		if err := json.Unmarshal([]byte(payload), r.Report); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", r.RunID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
