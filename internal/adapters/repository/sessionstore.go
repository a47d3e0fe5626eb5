package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/runtogether/pacer/internal/domain/decision"
	"github.com/runtogether/pacer/internal/domain/dedupe"
	"github.com/runtogether/pacer/internal/domain/model"
	"github.com/runtogether/pacer/pkg/metrics"
)

// Defaults match the serving configuration: a 600-second history
// window, a 30-minute idle horizon and a 60-second cleanup period.
const (
	defaultRetention     = 600.0
	defaultTTL           = 30 * time.Minute
	defaultCleanupPeriod = 60 * time.Second
)

// session is one runner's live state. Mutation only ever happens while
// holding the owning store's lock.
type session struct {
	id           string
	level        decision.Level
	history      []model.Sample
	lastActivity time.Time

	// seen tracks this session's ingested timestamps. It is scoped to
	// the session on purpose: once the session is evicted the keys go
	// with it, so a later session reusing the id starts clean.
	seen dedupe.Deduper

	// Lifetime aggregates for the eviction summary. These survive the
	// retention trim, so they describe the whole session.
	samples    int
	startTS    float64
	endTS      float64
	hrSum      float64
	hrCount    int
	maxHR      float64
	speedSum   float64
	speedCount int
	distanceKM float64
}

func (s *session) absorb(batch []model.Sample) {
	for _, smp := range batch {
		if s.samples == 0 {
			s.startTS = smp.Timestamp
		}
		s.samples++
		s.endTS = smp.Timestamp
		if hr, ok := smp.HeartRate.Value(); ok {
			s.hrSum += hr
			s.hrCount++
			if hr > s.maxHR {
				s.maxHR = hr
			}
		}
		if sp, ok := smp.Speed.Value(); ok {
			s.speedSum += sp
			s.speedCount++
		}
		if d, ok := smp.DistanceKM.Value(); ok && d > s.distanceKM {
			s.distanceKM = d
		}
	}
}

func (s *session) summary() Summary {
	out := Summary{
		SessionID:  s.id,
		Level:      s.level,
		Samples:    s.samples,
		StartTS:    s.startTS,
		EndTS:      s.endTS,
		MaxHR:      s.maxHR,
		DistanceKM: s.distanceKM,
	}
	if s.hrCount > 0 {
		out.AvgHR = s.hrSum / float64(s.hrCount)
	}
	if s.speedCount > 0 {
		out.AvgSpeed = s.speedSum / float64(s.speedCount)
	}
	return out
}

// SessionStore is the in-memory Store implementation: a registry map
// guarded by one mutex, plus a background eviction loop.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session

	retention     float64
	ttl           time.Duration
	cleanupPeriod time.Duration
	now           func() time.Time
	onEvict       func(Summary)
	newDeduper    func() dedupe.Deduper

	stopCh   chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewSessionStore constructs a store with default horizons.
func NewSessionStore(opts ...Option) *SessionStore {
	s := &SessionStore{
		sessions:      make(map[string]*session),
		retention:     defaultRetention,
		ttl:           defaultTTL,
		cleanupPeriod: defaultCleanupPeriod,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the periodic eviction loop. Safe to call once.
func (s *SessionStore) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.cleanupLoop(ctx)
}

// Stop terminates the eviction loop.
func (s *SessionStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *SessionStore) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.EvictIdle(ctx)
		}
	}
}

// GetOrCreate ensures a session exists for id. An existing session has
// its skill level refreshed from the request.
func (s *SessionStore) GetOrCreate(ctx context.Context, id string, level decision.Level) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.level = level
		return false
	}
	sess := &session{
		id:           id,
		level:        level,
		lastActivity: s.now(),
	}
	if s.newDeduper != nil {
		sess.seen = s.newDeduper()
	}
	s.sessions[id] = sess
	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(len(s.sessions))
	return true
}

// Append adds samples in order, trims the buffer to the retention
// horizon keyed on the newest appended timestamp, and refreshes the
// session's last-activity time. With a deduper configured, samples
// already seen for this session are dropped so retried uploads do not
// double-count.
func (s *SessionStore) Append(ctx context.Context, id string, samples []model.Sample) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	if sess.seen != nil && len(samples) > 0 {
		fresh := samples[:0:0]
		for _, smp := range samples {
			key := fmt.Sprintf("%.3f", smp.Timestamp)
			if sess.seen.SeenAndRecord(ctx, key) {
				continue
			}
			fresh = append(fresh, smp)
		}
		if dropped := len(samples) - len(fresh); dropped > 0 {
			metrics.RecordDuplicateSamples(dropped)
		}
		samples = fresh
	}
	if len(samples) > 0 {
		sess.history = append(sess.history, samples...)
		sess.absorb(samples)

		// Trim scans the whole buffer, not just a prefix, so a stale
		// timestamp delivered out of order is still dropped.
		latest := samples[len(samples)-1].Timestamp
		cutoff := latest - s.retention
		stale := 0
		for _, smp := range sess.history {
			if smp.Timestamp < cutoff {
				stale++
			}
		}
		if stale > 0 {
			kept := make([]model.Sample, 0, len(sess.history)-stale)
			for _, smp := range sess.history {
				if smp.Timestamp >= cutoff {
					kept = append(kept, smp)
				}
			}
			sess.history = kept
		}
		sess.lastActivity = s.now()
		metrics.RecordSamplesIngested(len(samples))
	}

	return Snapshot{
		ID:      sess.id,
		Level:   sess.level,
		History: append([]model.Sample(nil), sess.history...),
	}, nil
}

// EvictIdle drops sessions idle beyond the TTL, along with their
// dedupe state, so a later session under the same id ingests re-sent
// timestamps as fresh data. Eviction callbacks run after the registry
// lock is released, so a slow archive sink never blocks live ticks.
func (s *SessionStore) EvictIdle(ctx context.Context) int {
	now := s.now()

	s.mu.Lock()
	var evicted []Summary
	for id, sess := range s.sessions {
		if now.Sub(sess.lastActivity) > s.ttl {
			evicted = append(evicted, sess.summary())
			delete(s.sessions, id)
		}
	}
	metrics.UpdateActiveSessions(len(s.sessions))
	s.mu.Unlock()

	for _, sum := range evicted {
		metrics.RecordSessionEvicted()
		if s.onEvict != nil {
			s.onEvict(sum)
		}
	}
	return len(evicted)
}

// Count returns the number of live sessions.
func (s *SessionStore) Count(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
