package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for the run history.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		scenario   TEXT NOT NULL DEFAULT '',
		algorithm  TEXT NOT NULL,
		quantum    INTEGER NOT NULL DEFAULT 0,
		ticks      INTEGER NOT NULL,
		makespan   INTEGER NOT NULL,
		converged  INTEGER NOT NULL,
		result     TEXT NOT NULL,
		created_at INTEGER NOT NULL -- unix nanoseconds, UTC
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq     INTEGER NOT NULL,
		time    INTEGER NOT NULL,
		tick    INTEGER NOT NULL,
		kind    TEXT NOT NULL,
		process TEXT NOT NULL,
		detail  TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_process ON events(run_id, process)`,
}

// migrate executes all schema statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
