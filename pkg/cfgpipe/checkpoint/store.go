// Package checkpoint persists run snapshots so an interrupted pipeline run
// can be resumed from the last transform that completed.
package checkpoint

import (
	"context"
	"errors"
	"time"
)

// Store persists snapshots keyed by run ID and step index.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores the snapshot data for a run at a step, replacing any
	// earlier data for the same step.
	Save(ctx context.Context, runID string, step int, data []byte) error

	// Load returns the data saved for a run at a step, or ErrNotFound.
	Load(ctx context.Context, runID string, step int) ([]byte, error)

	// List returns the snapshots of a run ordered by step. A run without
	// snapshots yields an empty slice.
	List(ctx context.Context, runID string) ([]Info, error)

	// Runs returns every run ID that has snapshots, sorted.
	Runs(ctx context.Context) ([]string, error)

	// DeleteRun removes every snapshot of a run. Unknown runs are a no-op.
	DeleteRun(ctx context.Context, runID string) error

	// Close releases the store. Later calls fail with ErrStoreClosed.
	Close() error
}

// Info describes a stored snapshot without its payload.
type Info struct {
	RunID     string
	Step      int
	Timestamp time.Time
	Size      int64
}

var (
	// ErrNotFound indicates no snapshot exists for the requested key.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("snapshot store closed")

	// ErrVersionMismatch indicates a snapshot written by an incompatible
	// format version.
	ErrVersionMismatch = errors.New("snapshot version mismatch")
)

// Latest loads the snapshot with the highest step of a run.
func Latest(ctx context.Context, s Store, runID string) (*Snapshot, error) {
	infos, err := s.List(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, ErrNotFound
	}
	data, err := s.Load(ctx, runID, infos[len(infos)-1].Step)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
