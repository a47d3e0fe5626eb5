// Package worker drains the archive spool and persists session summaries.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/runtogether/pacer/internal/adapters/mq/queue"
	"github.com/runtogether/pacer/pkg/logger"
	"github.com/runtogether/pacer/pkg/metrics"
)

const (
	defaultWriterCount    = 2
	writerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Summary abstracts what writers read off the spool.
type Summary = queue.Summary

// Sink persists a session summary.
type Sink interface {
	SaveSummary(ctx context.Context, s Summary) error
}

// Queue defines how writers receive summaries.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Summary
}

// Writer drains summaries from the spool into the sink.
type Writer struct {
	queue Queue
	sink  Sink
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWriter creates a writer with configuration options.
func NewWriter(q Queue, sink Sink, opts ...Option) *Writer {
	w := &Writer{
		queue:    q,
		sink:     sink,
		name:     "writer",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("archive-writer"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "writer" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the writer loop. It returns when the context is cancelled,
// Shutdown is called, or the spool is closed and drained.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)

	summaries := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-summaries:
			if !ok {
				return
			}
			if err := w.persist(ctx, s); err != nil {
				w.logger.Error(ctx, "archive write failed",
					logger.String("session_id", s.SessionID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the writer.
func (w *Writer) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// persist writes a single summary to the sink.
func (w *Writer) persist(ctx context.Context, s Summary) error {
	start := time.Now()
	defer func() {
		metrics.RecordWriterLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.sink.SaveSummary(ctx, s); err != nil {
		metrics.RecordWriterError()
		return fmt.Errorf("save summary for session %s: %w", s.SessionID, err)
	}

	w.logger.Debug(ctx, "session summary archived",
		logger.String("session_id", s.SessionID),
		logger.Int("samples", s.Samples),
	)
	return nil
}

// Pool manages multiple writers draining the same spool.
type Pool struct {
	writers []*Writer
	queue   Queue

	logger logger.Logger
}

// NewPool creates a pool of writers. A non-positive count falls back to
// the default.
func NewPool(writerCount int, q Queue, sink Sink) *Pool {
	if writerCount < 1 {
		writerCount = defaultWriterCount
	}

	pool := &Pool{
		writers: make([]*Writer, writerCount),
		queue:   q,
		logger:  logger.Get().Named("archive-writer-pool"),
	}

	for i := 0; i < writerCount; i++ {
		pool.writers[i] = NewWriter(q, sink, WithName("writer-"+strconv.Itoa(i)))
	}

	metrics.UpdateWriterActiveCount(writerCount)

	return pool
}

// Start starts all writers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.writers {
		go w.Run(ctx)
	}
}

// Stop stops all writers without waiting for the spool to drain.
func (p *Pool) Stop() {
	for _, w := range p.writers {
		close(w.shutdown)
	}
	for _, w := range p.writers {
		select {
		case <-w.done:
		case <-time.After(writerShutdownTimeout):
		}
	}
	metrics.UpdateWriterActiveCount(0)
}

// Shutdown closes the spool, lets writers drain it, and waits for them
// to finish or the timeout to elapse.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing spool", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.writers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "writer shutdown timed out", logger.Int("writer_id", i))
		}
	}

	metrics.UpdateWriterActiveCount(0)
	return nil
}
