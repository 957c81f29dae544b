package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/cpusim/sim/report"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *logrus.Entry
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logrus.WithField("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.WithField("op", "migrate").Debug("sql")
	return migrate(ctx, s.db)
}

// SaveRun stores a finished run and its events under a fresh ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, r *report.Result) (*Run, error) {
	run := &Run{
		ID:        "run_" + uuid.New().String(),
		Scenario:  r.Scenario,
		Algorithm: r.Algorithm,
		Quantum:   r.Quantum,
		Ticks:     r.Ticks,
		Makespan:  r.Makespan,
		Converged: r.Converged,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Result:    r,
	}
	s.logger.WithFields(logrus.Fields{"op": "insert", "table": "runs", "id": run.ID}).Debug("sql")

	doc, err := r.MarshalDocument()
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, scenario, algorithm, quantum, ticks, makespan, converged, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Scenario, run.Algorithm, run.Quantum, run.Ticks, run.Makespan,
		boolToInt(run.Converged), string(doc), run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	for i, ev := range r.Events {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (run_id, seq, time, tick, kind, process, detail) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, ev.Time, ev.Tick, ev.Kind, ev.Process, ev.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf("insert event %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

// GetRun loads one run with its full result. It returns nil, nil when the ID
// is unknown.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.logger.WithFields(logrus.Fields{"op": "select", "table": "runs", "id": id}).Debug("sql")

	var run Run
	var converged int
	var doc string
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, scenario, algorithm, quantum, ticks, makespan, converged, result, created_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Scenario, &run.Algorithm, &run.Quantum, &run.Ticks, &run.Makespan,
		&converged, &doc, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Converged = converged != 0
	run.CreatedAt = time.Unix(0, createdAt).UTC()
	if run.Result, err = report.ParseResult([]byte(doc)); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs first, without their results.
// limit <= 0 means no limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	s.logger.WithFields(logrus.Fields{"op": "list", "table": "runs", "limit": limit}).Debug("sql")

	query := `SELECT id, scenario, algorithm, quantum, ticks, makespan, converged, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var converged int
		var createdAt int64
		if err := rows.Scan(&run.ID, &run.Scenario, &run.Algorithm, &run.Quantum, &run.Ticks,
			&run.Makespan, &converged, &createdAt); err != nil {
			return nil, err
		}
		run.Converged = converged != 0
		run.CreatedAt = time.Unix(0, createdAt).UTC()
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// countEvents returns the number of stored events of a run, optionally
// filtered by process name.
func (s *SQLiteStore) countEvents(ctx context.Context, runID, process string) (int, error) {
	query := `SELECT COUNT(*) FROM events WHERE run_id = ?`
	args := []any{runID}
	if process != "" {
		query += ` AND process = ?`
		args = append(args, process)
	}
	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// DeleteRun removes a run and its events.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.WithFields(logrus.Fields{"op": "delete", "table": "runs", "id": id}).Debug("sql")
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
