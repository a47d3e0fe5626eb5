// Package dedupe tracks seen sample keys so re-sent batches are
// ingested at most once.
//
// Telemetry uploaders retry on timeouts, so the same second of data can
// arrive twice. Feeding it into a session buffer twice would skew every
// rolling window downstream.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 100000

// Deduper records seen keys to ensure at-most-once ingestion.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records
	// it if not. Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Size returns the current number of tracked keys.
	Size() int64
}

// inMemoryDeduper implements Deduper with a map plus a FIFO ring of
// keys for bounded-memory eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})

	return d
}

// SeenAndRecord atomically checks whether key was seen and records it
// if not. When the tracker is full the oldest key is forgotten first.
// The ring grows on demand up to maxSize, so a mostly-idle tracker
// stays small.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if len(d.ring) < d.maxSize {
		d.ring = append(d.ring, key)
	} else {
		delete(d.seen, d.ring[d.next])
		d.size.Add(-1)
		d.ring[d.next] = key
		d.next = (d.next + 1) % d.maxSize
	}

	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

// Size returns the current number of tracked keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
