// Package repository defines the session store interface and errors.
package repository

import (
	"context"

	"github.com/runtogether/pacer/internal/domain/decision"
	"github.com/runtogether/pacer/internal/domain/model"
)

// Snapshot is a caller-owned copy of one session's state after an
// append. The history slice is never shared with the store.
type Snapshot struct {
	ID      string
	Level   decision.Level
	History []model.Sample
}

// Summary aggregates a whole session's samples for archival at
// eviction time. Unlike the history buffer it spans the full session,
// not just the retention window.
type Summary struct {
	SessionID  string
	Level      decision.Level
	Samples    int
	StartTS    float64
	EndTS      float64
	AvgHR      float64
	MaxHR      float64
	AvgSpeed   float64 // m/s
	DistanceKM float64
}

// Store provides read/write access to the per-session history state.
type Store interface {
	// GetOrCreate ensures a session exists for id, updating its skill
	// level if it already does. Returns true when a new session was
	// created.
	GetOrCreate(ctx context.Context, id string, level decision.Level) bool

	// Append adds normalized samples to the session in order, trims
	// the buffer to the retention horizon and refreshes last-activity.
	// An empty sample list is a no-op. Returns a snapshot of the
	// session after the append, or ErrNotFound for an unknown id.
	Append(ctx context.Context, id string, samples []model.Sample) (Snapshot, error)

	// EvictIdle removes every session idle beyond the TTL, invoking
	// the eviction callback for each. Returns the number evicted.
	EvictIdle(ctx context.Context) int

	// Count returns the number of live sessions.
	Count(ctx context.Context) int
}
