// Package cellular implements the cellular anomaly engine: history and
// stationary-pattern analysis, downgrade-chain tracking, movement
// classification, IMSI-catcher scoring, and the per-snapshot decision
// ladder (spec.md §4.5-§4.7).
package cellular

import (
	"sync"
	"time"

	"github.com/meshguard/sentinel/pkg/model"
)

// MaxHistory bounds the snapshot ring (spec.md §3, §8).
const MaxHistory = 100

// History is the bounded, time-ordered ring of recent snapshots.
type History struct {
	mu        sync.Mutex
	snapshots []model.CellSnapshot // newest last
}

// NewHistory creates an empty history ring.
func NewHistory() *History { return &History{} }

// Record appends snapshot, evicting the oldest entry past MaxHistory.
func (h *History) Record(snap model.CellSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = append(h.snapshots, snap)
	if len(h.snapshots) > MaxHistory {
		h.snapshots = h.snapshots[len(h.snapshots)-MaxHistory:]
	}
}

// Snapshot returns a copy of the current ring (readers take a copy before
// analysis so the lock is never held during scoring, per spec.md §5).
func (h *History) Snapshot() []model.CellSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.CellSnapshot, len(h.snapshots))
	copy(out, h.snapshots)
	return out
}

// Len reports the current ring size.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.snapshots)
}

// RecentCellChanges counts adjacent-pair cell_id differences among
// snapshots newer than now-windowMS (spec.md §4.5).
func RecentCellChanges(snaps []model.CellSnapshot, window time.Duration, now time.Time) int {
	cutoff := now.Add(-window)
	var recent []model.CellSnapshot
	for _, s := range snaps {
		if s.Timestamp.After(cutoff) {
			recent = append(recent, s)
		}
	}
	count := 0
	for i := 1; i < len(recent); i++ {
		a, b := recent[i-1].CellID, recent[i].CellID
		if a == nil || b == nil {
			continue
		}
		if *a != *b {
			count++
		}
	}
	return count
}

// RapidSwitchThresholdPerMin returns the per-minute change-rate threshold
// for the given movement class (spec.md §4.5: 5/min stationary, 12/min
// moving).
func RapidSwitchThresholdPerMin(moving bool) int {
	if moving {
		return 12
	}
	return 5
}
