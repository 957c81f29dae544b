// Package store persists finished runs in SQLite so the CLI can list and
// replay them.
package store

import (
	"context"
	"time"

	"github.com/inference-sim/cpusim/sim/report"
)

// Run is one persisted simulation.
type Run struct {
	ID        string
	Scenario  string
	Algorithm string
	Quantum   int64
	Ticks     int
	Makespan  int64
	Converged bool
	CreatedAt time.Time
	Result    *report.Result // nil in ListRuns results
}

// Store defines the persistence layer for run history.
type Store interface {
	SaveRun(ctx context.Context, r *report.Result) (*Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error

	Close() error
	Migrate(ctx context.Context) error
}
