package cellular

import (
	"sync"
	"time"

	"github.com/meshguard/sentinel/pkg/model"
)

// MaxDowngradeChain bounds the generation-transition ring (spec.md §4.6).
const MaxDowngradeChain = 20

// DowngradeChainPruneAfter is the age at which entries are pruned.
const DowngradeChainPruneAfter = 5 * time.Minute

type generationEntry struct {
	timestamp  time.Time
	generation model.NetworkGeneration
}

// DowngradeTracker owns the bounded ring of network-generation transitions.
type DowngradeTracker struct {
	mu      sync.Mutex
	entries []generationEntry
}

// NewDowngradeTracker creates an empty tracker.
func NewDowngradeTracker() *DowngradeTracker { return &DowngradeTracker{} }

// Observe appends generation if it differs from the ring's current tail,
// then prunes entries older than 5 minutes (spec.md §4.6).
func (d *DowngradeTracker) Observe(generation model.NetworkGeneration, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.entries) == 0 || d.entries[len(d.entries)-1].generation != generation {
		d.entries = append(d.entries, generationEntry{timestamp: now, generation: generation})
		if len(d.entries) > MaxDowngradeChain {
			d.entries = d.entries[len(d.entries)-MaxDowngradeChain:]
		}
	}

	cutoff := now.Add(-DowngradeChainPruneAfter)
	kept := d.entries[:0]
	for _, e := range d.entries {
		if e.timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	d.entries = kept
}

// RecentChain returns the current chain of generation labels, oldest first.
func (d *DowngradeTracker) RecentChain() []model.NetworkGeneration {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.NetworkGeneration, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.generation
	}
	return out
}

// IsMonotoneDowngradeToTwoG reports whether chain has length >= 2, is
// monotone non-increasing by generation rank, and ends at 2G — the
// "Progressive downgrade to 2G (StingRay signature)" factor (spec.md
// §4.7.1).
func IsMonotoneDowngradeToTwoG(chain []model.NetworkGeneration) bool {
	if len(chain) < 2 {
		return false
	}
	if chain[len(chain)-1] != model.Gen2G {
		return false
	}
	for i := 1; i < len(chain); i++ {
		if rank(chain[i]) > rank(chain[i-1]) {
			return false
		}
	}
	return true
}

func rank(g model.NetworkGeneration) int {
	switch g {
	case model.Gen5G:
		return 5
	case model.Gen4G:
		return 4
	case model.Gen3G:
		return 3
	case model.Gen2G:
		return 2
	default:
		return 0
	}
}
