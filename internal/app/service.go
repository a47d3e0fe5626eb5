// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/runtogether/pacer/internal/adapters/archive"
	"github.com/runtogether/pacer/internal/adapters/artifact"
	"github.com/runtogether/pacer/internal/adapters/mq/queue"
	"github.com/runtogether/pacer/internal/adapters/mq/worker"
	"github.com/runtogether/pacer/internal/adapters/repository"
	"github.com/runtogether/pacer/internal/domain/decision"
	"github.com/runtogether/pacer/internal/domain/dedupe"
	"github.com/runtogether/pacer/internal/domain/feature"
	"github.com/runtogether/pacer/internal/domain/model"
	"github.com/runtogether/pacer/internal/domain/types"
	"github.com/runtogether/pacer/pkg/logger"
	"github.com/runtogether/pacer/pkg/metrics"
)

// Service orchestrates ticks: it owns the session store, the loaded
// model artifacts and the optional summary archive.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     *repository.SessionStore
	artifacts *artifact.Registry
	archive   *archive.Archive
	spool     *queue.InMemorySpool
	writers   *worker.Pool

	// Configuration
	modelsDir     string
	archivePath   string
	retention     float64
	ttl           time.Duration
	cleanupPeriod time.Duration
	writerCount   int
	maxSamples    int
	now           func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelsDir sets the directory holding the model artifact files.
func WithModelsDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.modelsDir = dir
		}
	}
}

// WithArchivePath enables the SQLite archive at the given path. Empty
// leaves archiving off.
func WithArchivePath(path string) Option {
	return func(s *Service) {
		s.archivePath = path
	}
}

// WithRetention sets the session buffer horizon in seconds.
func WithRetention(seconds float64) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.retention = seconds
		}
	}
}

// WithSessionTTL sets the idle-eviction horizon.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCleanupPeriod sets the eviction loop period.
func WithCleanupPeriod(period time.Duration) Option {
	return func(s *Service) {
		if period > 0 {
			s.cleanupPeriod = period
		}
	}
}

// WithWriterCount sets the number of archive writer goroutines. Zero or
// negative keeps the pool default.
func WithWriterCount(n int) Option {
	return func(s *Service) {
		s.writerCount = n
	}
}

// WithMaxSamplesPerTick caps the batch size of a single tick request.
func WithMaxSamplesPerTick(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSamples = n
		}
	}
}

// WithNowFunc injects a clock for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelsDir:     "models",
		retention:     600,
		ttl:           30 * time.Minute,
		cleanupPeriod: 60 * time.Second,
		maxSamples:    1000,
		now:           time.Now,
		logger:        nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads artifacts and brings up the session store and archive.
// A missing metadata file is fatal; missing models or scalers only
// degrade health.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting pacing service...")

	artifacts, err := artifact.Load(ctx, s.modelsDir)
	if err != nil {
		return fmt.Errorf("loading model artifacts: %w", err)
	}
	s.artifacts = artifacts

	if s.archivePath != "" {
		a, err := archive.Open(s.archivePath)
		if err != nil {
			return fmt.Errorf("opening session archive: %w", err)
		}
		s.archive = a

		// Evicted summaries are spooled and written off the hot path.
		s.spool = queue.NewInMemorySpool()
		s.writers = worker.NewPool(s.writerCount, s.spool, a)
		s.writers.Start(ctx)
	}

	s.store = repository.NewSessionStore(
		repository.WithRetention(s.retention),
		repository.WithTTL(s.ttl),
		repository.WithCleanupPeriod(s.cleanupPeriod),
		repository.WithNowFunc(s.now),
		repository.WithDeduperFactory(func() dedupe.Deduper { return dedupe.NewInMemoryDeduper() }),
		repository.WithEvictionCallback(s.archiveSummary),
	)
	s.store.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "pacing service started",
		logger.String("modelsDir", s.modelsDir),
		logger.Any("archive", s.archive != nil),
		logger.Float64("retentionSeconds", s.retention),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping pacing service...")

	if s.store != nil {
		s.store.Stop()
	}
	if s.writers != nil {
		// Drains the spool before the archive goes away.
		_ = s.writers.Shutdown(context.Background())
		s.writers = nil
		s.spool = nil
	}
	if s.archive != nil {
		_ = s.archive.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "pacing service stopped")
}

// archiveSummary is the store's eviction callback. It only spools the
// summary; writers persist it asynchronously.
func (s *Service) archiveSummary(sum repository.Summary) {
	if s.spool == nil {
		return
	}
	ctx := context.Background()
	if !s.spool.Enqueue(ctx, sum) {
		s.logger.Warn(ctx, "archive spool rejected session summary",
			logger.String("sessionID", sum.SessionID))
	}
}

// Tick processes one batch of samples for a session and produces the
// recommendation. Validation failures never touch session state.
func (s *Service) Tick(ctx context.Context, sessionID string, runnerLevel int, raw []model.RawSample) (types.TickResult, error) {
	start := time.Now()

	if len(raw) == 0 {
		metrics.RecordTickError("validation")
		return types.TickResult{}, fmt.Errorf("%w: no samples provided", ErrValidation)
	}
	if len(raw) > s.maxSamples {
		metrics.RecordTickError("validation")
		return types.TickResult{}, fmt.Errorf("%w: batch of %d exceeds limit of %d samples", ErrValidation, len(raw), s.maxSamples)
	}
	level, err := decision.LevelFromInt(runnerLevel)
	if err != nil {
		metrics.RecordTickError("validation")
		return types.TickResult{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	samples := make([]model.Sample, len(raw))
	for i, r := range raw {
		samples[i] = model.Normalize(r, s.now())
	}

	s.store.GetOrCreate(ctx, sessionID, level)
	snap, err := s.store.Append(ctx, sessionID, samples)
	if err != nil {
		// Only reachable if the session was evicted between the two
		// store calls; recreate and retry once.
		s.store.GetOrCreate(ctx, sessionID, level)
		snap, err = s.store.Append(ctx, sessionID, samples)
		if err != nil {
			metrics.RecordTickError("store")
			return types.TickResult{}, err
		}
	}

	if len(snap.History) == 0 {
		// Every sample in the batch was a re-send the live session had
		// already ingested and since trimmed past the retention horizon.
		metrics.RecordTickError("validation")
		return types.TickResult{}, fmt.Errorf("%w: all samples were duplicates", ErrValidation)
	}

	newest := snap.History[len(snap.History)-1]
	result := types.TickResult{
		SessionID: sessionID,
		Timestamp: newest.Timestamp,
		Display:   int64(newest.Timestamp)%5 == 0,
	}

	if len(snap.History) < decision.WarmupSamples {
		result.Result = types.Recommendation{
			Recommendation: decision.Warmup(newest, snap.Level),
		}
		metrics.RecordTick("warmup")
		metrics.RecordTickLatency(float64(time.Since(start).Milliseconds()))
		return result, nil
	}

	vec := feature.Compute(snap.History)

	predHR, err := s.artifacts.HR().Predict(vec)
	if err != nil {
		metrics.RecordPredictionError()
		metrics.RecordTickError("prediction")
		return types.TickResult{}, fmt.Errorf("heart rate prediction: %w", err)
	}
	predSpeed, err := s.artifacts.Speed().Predict(vec)
	if err != nil {
		metrics.RecordPredictionError()
		metrics.RecordTickError("prediction")
		return types.TickResult{}, fmt.Errorf("speed prediction: %w", err)
	}

	rec := decision.Full(vec, newest, predHR, predSpeed, snap.Level)

	// Rounding is presentation-only; the engine above saw raw values.
	roundedHR := decision.RoundHR(predHR)
	roundedSpeed := decision.RoundSpeed(predSpeed)
	result.Result = types.Recommendation{
		PredHR:         &roundedHR,
		PredSpeed:      &roundedSpeed,
		Recommendation: rec,
	}

	metrics.RecordTick("full")
	metrics.RecordTickLatency(float64(time.Since(start).Milliseconds()))
	return result, nil
}

// Health reports artifact availability.
func (s *Service) Health(ctx context.Context) types.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.artifacts.Health()
	if h.Ready() {
		h.Status = "ok"
	} else {
		h.Status = "degraded"
	}
	h.ServerTime = float64(s.now().UnixNano()) / 1e9
	return h
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":          s.started,
		"retentionSeconds": s.retention,
		"sessionTTL":       s.ttl.String(),
	}

	if s.started {
		active := s.store.Count(ctx)
		stats["activeSessions"] = active
		metrics.UpdateActiveSessions(active)

		if s.archive != nil {
			if n, err := s.archive.Count(ctx); err == nil {
				stats["archivedRuns"] = n
			}
		}
		if s.spool != nil {
			stats["archiveSpool"] = s.spool.Len(ctx)
		}
	}

	return stats
}
