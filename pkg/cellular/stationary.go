package cellular

import (
	"sync"
	"time"

	"github.com/meshguard/sentinel/pkg/model"
)

// MaxStationaryChanges bounds the stationary-change ring (spec.md §3).
const MaxStationaryChanges = 20

// StationaryChangePruneAfter is the age at which entries are pruned
// (spec.md §3: "entries older than 5 minutes pruned").
const StationaryChangePruneAfter = 5 * time.Minute

// QuickReturnWindow is the window within which a return to a prior "from"
// cell counts as a quick return (spec.md §4.5).
const QuickReturnWindow = 60 * time.Second

// StationaryTracker owns the bounded ring of stationary cell-change events.
type StationaryTracker struct {
	mu      sync.Mutex
	changes []model.StationaryCellChangeEvent // newest last
}

// NewStationaryTracker creates an empty tracker.
func NewStationaryTracker() *StationaryTracker { return &StationaryTracker{} }

// Track appends a from->to transition, pruning stale entries first and
// marking ReturnedToOriginal if the pair closes a loop with any existing
// entry (spec.md §4.5).
func (t *StationaryTracker) Track(from, to int64, now time.Time) model.StationaryCellChangeEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(now)

	returned := false
	for _, e := range t.changes {
		if e.ToCellID == from || e.FromCellID == to {
			returned = true
			break
		}
	}

	ev := model.StationaryCellChangeEvent{
		Timestamp:          now,
		FromCellID:         from,
		ToCellID:           to,
		ReturnedToOriginal: returned,
	}
	t.changes = append(t.changes, ev)
	if len(t.changes) > MaxStationaryChanges {
		t.changes = t.changes[len(t.changes)-MaxStationaryChanges:]
	}
	return ev
}

func (t *StationaryTracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-StationaryChangePruneAfter)
	kept := t.changes[:0]
	for _, e := range t.changes {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	t.changes = kept
}

// Snapshot returns a copy of the current ring.
func (t *StationaryTracker) Snapshot() []model.StationaryCellChangeEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.StationaryCellChangeEvent, len(t.changes))
	copy(out, t.changes)
	return out
}

// PatternResult is the output of AnalyzeStationaryPattern (spec.md §4.5).
type PatternResult struct {
	RecentChangesCount    int
	IsQuickReturn         bool
	IsOscillating         bool
	UniqueCellsCount      int
	TimeSinceFirstChangeMS int64
}

// AnalyzeStationaryPattern evaluates the ring for quick-return and
// oscillation patterns around the from->to transition just recorded.
func (t *StationaryTracker) AnalyzeStationaryPattern(from, to int64, now time.Time) PatternResult {
	entries := t.Snapshot()

	cutoff5m := now.Add(-5 * time.Minute)
	recentCount := 0
	for _, e := range entries {
		if e.Timestamp.After(cutoff5m) {
			recentCount++
		}
	}

	quickReturn := false
	for _, e := range entries {
		if e.ToCellID == from && now.Sub(e.Timestamp) <= QuickReturnWindow {
			quickReturn = true
			break
		}
	}

	unique := map[int64]bool{}
	returns := 0
	for _, e := range entries {
		unique[e.FromCellID] = true
		unique[e.ToCellID] = true
		if e.ReturnedToOriginal {
			returns++
		}
	}
	total := len(entries)
	oscillating := len(unique) <= 3 && total >= 3 && float64(returns) >= float64(total)/2

	var firstChangeAgoMS int64
	if len(entries) > 0 {
		firstChangeAgoMS = now.Sub(entries[0].Timestamp).Milliseconds()
	}

	return PatternResult{
		RecentChangesCount:     recentCount,
		IsQuickReturn:          quickReturn,
		IsOscillating:          oscillating,
		UniqueCellsCount:       len(unique),
		TimeSinceFirstChangeMS: firstChangeAgoMS,
	}
}
