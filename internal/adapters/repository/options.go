// Package repository defines the session store interface and errors.
package repository

import (
	"time"

	"github.com/runtogether/pacer/internal/domain/dedupe"
)

// Option applies a configuration option to the SessionStore.
type Option func(*SessionStore)

// WithRetention sets the in-buffer retention horizon in seconds of
// sample time.
func WithRetention(seconds float64) Option {
	return func(s *SessionStore) {
		if seconds > 0 {
			s.retention = seconds
		}
	}
}

// WithTTL sets the idle horizon after which a session is evicted.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCleanupPeriod sets how often the background eviction loop runs.
func WithCleanupPeriod(period time.Duration) Option {
	return func(s *SessionStore) {
		if period > 0 {
			s.cleanupPeriod = period
		}
	}
}

// WithNowFunc injects a clock, used by tests to drive idle eviction
// deterministically.
func WithNowFunc(now func() time.Time) Option {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDeduperFactory enables duplicate-sample suppression on Append.
// The factory is invoked once per created session, so seen keys live
// and die with the session they guard: evicting a session forgets its
// timestamps along with its history. Nil leaves suppression off.
func WithDeduperFactory(fn func() dedupe.Deduper) Option {
	return func(s *SessionStore) {
		s.newDeduper = fn
	}
}

// WithEvictionCallback registers a hook invoked with each evicted
// session's summary. The callback runs outside the registry lock.
func WithEvictionCallback(fn func(Summary)) Option {
	return func(s *SessionStore) {
		s.onEvict = fn
	}
}
