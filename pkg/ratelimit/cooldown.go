// Package ratelimit implements the shared cooldown and per-type rate
// limiting primitive used by both detection engines (spec.md §4.7 step 1,
// §8 "Rate limiting"). The anomaly-time map is guarded by its own mutex,
// separate from each engine's history/trust/beacon locks (spec.md §5).
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks the last-emission time per anomaly type and a single
// global last-any-anomaly timestamp.
type Limiter struct {
	mu            sync.Mutex
	lastByType    map[string]time.Time
	lastAny       time.Time
	minInterval   time.Duration
	globalCooldown time.Duration
}

// New creates a Limiter. globalCooldown defaults to minInterval/2 if given
// as zero, and is floored to minInterval/2 per spec.md §4.7 step 1.
func New(minInterval, globalCooldown time.Duration) *Limiter {
	floor := minInterval / 2
	if globalCooldown <= 0 || globalCooldown < floor {
		globalCooldown = floor
	}
	return &Limiter{
		lastByType:     make(map[string]time.Time),
		minInterval:    minInterval,
		globalCooldown: globalCooldown,
	}
}

// AllowGlobal reports whether now clears the global cooldown since the
// last emission of any type. It does not itself record an emission.
func (l *Limiter) AllowGlobal(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lastAny.IsZero() {
		return true
	}
	return now.Sub(l.lastAny) >= l.globalCooldown
}

// Allow reports whether an anomaly of typ may be emitted at now, honoring
// both the global cooldown and the per-type minimum interval.
func (l *Limiter) Allow(typ string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastAny.IsZero() && now.Sub(l.lastAny) < l.globalCooldown {
		return false
	}
	if last, ok := l.lastByType[typ]; ok && now.Sub(last) < l.minInterval {
		return false
	}
	return true
}

// Record marks typ as emitted at now, updating both the per-type and
// global timestamps.
func (l *Limiter) Record(typ string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastByType[typ] = now
	l.lastAny = now
}
