// Package queue provides the in-memory spool that decouples session
// eviction from archive writes.
//
// Evicted session summaries are enqueued without blocking the store's
// cleanup loop; archive writers drain the spool on their own schedule.
package queue

import (
	"context"
	"sync"

	"github.com/runtogether/pacer/internal/adapters/repository"
	"github.com/runtogether/pacer/pkg/metrics"
)

const defaultCapacity = 1024

// Summary is the payload type flowing through the spool.
type Summary = repository.Summary

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a summary to the spool.
	// Returns false if the spool is full or closed and the summary was dropped.
	Enqueue(ctx context.Context, s Summary) bool

	// Dequeue returns a channel that receives summaries as they become
	// available. The channel is closed when the spool is closed and drained.
	Dequeue(ctx context.Context) <-chan Summary

	// Len returns the current number of spooled summaries.
	Len(ctx context.Context) int

	// Close stops accepting new summaries. Already-spooled summaries can
	// still be dequeued.
	Close() error

	// IsClosed reports whether the spool has been closed.
	IsClosed() bool
}

// InMemorySpool implements Queue using a buffered channel.
type InMemorySpool struct {
	summaries chan Summary
	capacity  int
	mu        sync.RWMutex
	closed    bool
}

// NewInMemorySpool creates a spool with configuration options.
func NewInMemorySpool(opts ...Option) *InMemorySpool {
	q := &InMemorySpool{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.summaries = make(chan Summary, q.capacity)

	metrics.UpdateSpoolCapacity(q.capacity)
	metrics.UpdateSpoolSize(0)

	return q
}

// Enqueue adds a summary to the spool.
func (q *InMemorySpool) Enqueue(ctx context.Context, s Summary) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordSpoolEnqueueError()
		return false
	}

	select {
	case q.summaries <- s:
		metrics.RecordSpoolEnqueue()
		metrics.UpdateSpoolSize(len(q.summaries))
		return true
	case <-ctx.Done():
		metrics.RecordSpoolEnqueueError()
		return false
	default:
		metrics.RecordSpoolEnqueueError()
		return false
	}
}

// Dequeue returns a channel that receives summaries as they become available.
func (q *InMemorySpool) Dequeue(ctx context.Context) <-chan Summary {
	out := make(chan Summary)
	go func() {
		defer close(out)
		for s := range q.summaries {
			select {
			case out <- s:
				metrics.RecordSpoolDequeue()
				metrics.UpdateSpoolSize(len(q.summaries))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of spooled summaries.
func (q *InMemorySpool) Len(ctx context.Context) int {
	size := len(q.summaries)
	metrics.UpdateSpoolSize(size)
	return size
}

// Close stops accepting new summaries.
func (q *InMemorySpool) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.summaries)
	q.closed = true

	return nil
}

// IsClosed reports whether the spool has been closed.
func (q *InMemorySpool) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
