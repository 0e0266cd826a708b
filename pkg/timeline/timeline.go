// Package timeline implements the bounded, newest-first event deque shared
// by both detection engines (spec.md §4.9), adapted from the teacher
// codebase's pkg/telem ring buffer.
package timeline

import (
	"sync"

	"github.com/meshguard/sentinel/pkg/model"
)

// Timeline is a thread-safe, capacity-bounded, newest-first event store.
// Append copies the stored events to put the new one in front, so each
// call costs O(n) in the number stored, not O(1); the oldest entry is
// dropped once capacity is exceeded.
type Timeline struct {
	mu       sync.RWMutex
	events   []model.TimelineEvent // index 0 is newest
	capacity int
	callback func(model.TimelineEvent)
}

// New creates a Timeline bounded to capacity entries (200 for the cellular
// engine, 100 for the ultrasonic engine per spec.md §3).
func New(capacity int) *Timeline {
	if capacity <= 0 {
		capacity = 1
	}
	return &Timeline{capacity: capacity}
}

// SetCallback installs a callback invoked (asynchronously) on every Append,
// mirroring the teacher's telem.Store event callback used for real-time
// publishing to observable streams.
func (t *Timeline) SetCallback(cb func(model.TimelineEvent)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callback = cb
}

// Append inserts ev at the front, evicting the oldest entry if at capacity.
func (t *Timeline) Append(ev model.TimelineEvent) {
	t.mu.Lock()
	t.events = append([]model.TimelineEvent{ev}, t.events...)
	if len(t.events) > t.capacity {
		t.events = t.events[:t.capacity]
	}
	cb := t.callback
	t.mu.Unlock()

	if cb != nil {
		go cb(ev)
	}
}

// Recent returns up to limit newest-first events (limit<=0 means all).
func (t *Timeline) Recent(limit int) []model.TimelineEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if limit <= 0 || limit > len(t.events) {
		limit = len(t.events)
	}
	out := make([]model.TimelineEvent, limit)
	copy(out, t.events[:limit])
	return out
}

// Len returns the current number of stored events.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.events)
}
