// Package ledger records stripper runs in a SQLite database.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"trunckernel/internal/grade"
	"trunckernel/internal/logging"
)

// ErrUnknownRun is returned by Steps for an id with no run.
var ErrUnknownRun = errors.New("unknown run")

// Run statuses.
const (
	StatusOK         = "ok"
	StatusNoProgress = "no_progress"
	StatusError      = "error"
)

// Run is one invocation of the stripper on a goal.
type Run struct {
	ID        string
	Goal      string
	Target    string
	Status    string
	Stripped  int
	Rounds    int
	StartedAt time.Time
	Duration  time.Duration
	Steps     []Step
}

// Step is an elimination or a rejected candidate within a run.
type Step struct {
	Seq      int
	Round    int
	Hyp      string
	Grade    grade.Grade
	From     string
	To       string
	Rejected bool
	Reason   string
}

// Ledger is the run store.
type Ledger struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open creates or opens the ledger at path.
func Open(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases alive across calls.
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db, path: path}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logging.Ledger("opened ledger at %s", path)
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		goal TEXT NOT NULL,
		target TEXT NOT NULL,
		status TEXT NOT NULL,
		stripped INTEGER NOT NULL,
		rounds INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS steps (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		round INTEGER NOT NULL,
		hyp TEXT NOT NULL,
		grade INTEGER NOT NULL,
		from_type TEXT NOT NULL,
		to_type TEXT NOT NULL,
		rejected INTEGER NOT NULL DEFAULT 0,
		reason TEXT,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);
	`
	_, err := l.db.Exec(schema)
	return err
}

// RecordRun stores r and its steps, assigning an id when r.ID is empty.
func (l *Ledger) RecordRun(ctx context.Context, r Run) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, goal, target, status, stripped, rounds, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Goal, r.Target, r.Status, r.Stripped, r.Rounds, r.StartedAt.UnixMilli(), r.Duration.Milliseconds())
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	for i, s := range r.Steps {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO steps (run_id, seq, round, hyp, grade, from_type, to_type, rejected, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, i, s.Round, s.Hyp, int64(s.Grade), s.From, s.To, s.Rejected, s.Reason)
		if err != nil {
			return "", fmt.Errorf("failed to record step %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	logging.Ledger("recorded run %s (%s, %d stripped)", r.ID, r.Status, r.Stripped)
	return r.ID, nil
}

// Runs returns the most recent runs, newest first, without their steps.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, goal, target, status, stripped, rounds, started_at, duration_ms
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, durationMS int64
		if err := rows.Scan(&r.ID, &r.Goal, &r.Target, &r.Status, &r.Stripped, &r.Rounds, &started, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Steps returns the steps of a run in order.
func (l *Ledger) Steps(ctx context.Context, runID string) ([]Step, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var exists int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, round, hyp, grade, from_type, to_type, rejected, reason
		FROM steps WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var s Step
		var g int64
		var reason sql.NullString
		if err := rows.Scan(&s.Seq, &s.Round, &s.Hyp, &g, &s.From, &s.To, &s.Rejected, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		s.Grade = grade.Grade(g)
		s.Reason = reason.String
		steps = append(steps, s)
	}
	return steps, rows.Err()
}
