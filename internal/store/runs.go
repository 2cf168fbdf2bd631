package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"recruitsync-engine/internal/domain"
)

// Run is one recorded sync run. Counters mirror the in-memory batch
// result; Errors is the JSON-encoded per-record error list.
type Run struct {
	ID         int64                `json:"id"`
	Kind       string               `json:"kind"` // sync | intake
	StartedAt  string               `json:"startedAt"`
	FinishedAt string               `json:"finishedAt"`
	OK         bool                 `json:"ok"`
	Total      int                  `json:"total"`
	Created    int                  `json:"created"`
	Updated    int                  `json:"updated"`
	Registered int                  `json:"registered"`
	Skipped    int                  `json:"skipped"`
	Failed     int                  `json:"failed"`
	Errors     []domain.RecordError `json:"errors,omitempty"`
	RunError   string               `json:"runError,omitempty"`
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: run history ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL,
  ok INTEGER NOT NULL,
  total INTEGER NOT NULL DEFAULT 0,
  created INTEGER NOT NULL DEFAULT 0,
  updated INTEGER NOT NULL DEFAULT 0,
  registered INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0,
  failed INTEGER NOT NULL DEFAULT 0,
  errors TEXT NOT NULL DEFAULT '[]',
  run_error TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_runs_started_at
ON runs(started_at);
`); err != nil {
		return err
	}

	// Mark schema v1
	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

// InsertRun records a finished run. runErr is non-nil only for run-level
// failures (the batch never started processing groups).
func InsertRun(ctx context.Context, db *sql.DB, kind string, startedAt, finishedAt time.Time, result domain.BatchResult, runErr error) (int64, error) {
	errsJSON, _ := json.Marshal(result.Errors)
	if result.Errors == nil {
		errsJSON = []byte("[]")
	}
	runError := ""
	if runErr != nil {
		runError = runErr.Error()
	}

	res, err := db.ExecContext(ctx, `
INSERT INTO runs(kind, started_at, finished_at, ok, total, created, updated, registered, skipped, failed, errors, run_error)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?);`,
		kind,
		startedAt.UTC().Format(time.RFC3339),
		finishedAt.UTC().Format(time.RFC3339),
		runErr == nil,
		result.Total, result.Created, result.Updated,
		result.Registered, result.Skipped, result.Failed,
		string(errsJSON), runError)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, kind, started_at, finished_at, ok, total, created, updated, registered, skipped, failed, errors, run_error
FROM runs
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var errsJSON string
		if err := rows.Scan(
			&r.ID,
			&r.Kind,
			&r.StartedAt,
			&r.FinishedAt,
			&r.OK,
			&r.Total,
			&r.Created,
			&r.Updated,
			&r.Registered,
			&r.Skipped,
			&r.Failed,
			&errsJSON,
			&r.RunError,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(errsJSON), &r.Errors)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CleanupOldRuns trims history older than three months.
func CleanupOldRuns(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM runs
WHERE started_at < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
