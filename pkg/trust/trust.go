// Package trust implements the per-cell trust model (spec.md §4.4): seen
// counts, first/last-seen, bounded location history, and the familiar-area
// test used to downweight the IMSI-catcher score around known-good cells.
package trust

import (
	"strconv"
	"sync"
	"time"

	"github.com/meshguard/sentinel/pkg/model"
)

// MaxLocations is the bound on a cell's historical location list.
const MaxLocations = 10

// TrustedThreshold is the seen-count at which a cell is considered trusted.
const TrustedThreshold = 5

// Info is the owned-by-the-trust-model record for one cell (spec.md §3).
type Info struct {
	SeenCount   int
	FirstSeen   time.Time
	LastSeen    time.Time
	Locations   []model.LatLon
	Operator    string
	NetworkType string
}

// Model is the thread-safe trust table, keyed by stringified cell_id. Only
// this engine's own lock guards it (spec.md §9).
type Model struct {
	mu    sync.RWMutex
	cells map[string]*Info
}

// New creates an empty trust model.
func New() *Model {
	return &Model{cells: make(map[string]*Info)}
}

func key(cellID int64) string { return strconv.FormatInt(cellID, 10) }

// Observe records a sighting of cellID, incrementing the seen count and
// last-seen timestamp, and appending loc to the bounded location history.
func (m *Model) Observe(cellID int64, operator, networkType string, loc *model.LatLon, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(cellID)
	info, ok := m.cells[k]
	if !ok {
		info = &Info{FirstSeen: now}
		m.cells[k] = info
	}
	info.SeenCount++
	info.LastSeen = now
	if operator != "" {
		info.Operator = operator
	}
	if networkType != "" {
		info.NetworkType = networkType
	}
	if loc != nil {
		info.Locations = append(info.Locations, *loc)
		if len(info.Locations) > MaxLocations {
			info.Locations = info.Locations[len(info.Locations)-MaxLocations:]
		}
	}
}

// Get returns a copy of the info for cellID, if known.
func (m *Model) Get(cellID int64) (Info, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.cells[key(cellID)]
	if !ok {
		return Info{}, false
	}
	return *info, true
}

// IsTrusted reports whether cellID has been seen enough times to be
// considered trusted (seen_count >= 5).
func (m *Model) IsTrusted(cellID int64) bool {
	info, ok := m.Get(cellID)
	return ok && info.SeenCount >= TrustedThreshold
}

// TrustScore buckets the seen count into a 0..100 score (spec.md §4.4).
func (m *Model) TrustScore(cellID int64) int {
	info, ok := m.Get(cellID)
	if !ok {
		return 0
	}
	switch {
	case info.SeenCount >= 20:
		return 100
	case info.SeenCount >= 10:
		return 80
	case info.SeenCount >= 5:
		return 60
	case info.SeenCount >= 2:
		return 30
	default:
		return 10
	}
}

// familiarAreaHalfSideDeg approximates 200 m as 0.002 degrees of lat/lon,
// matching spec.md §4.4's "≈200 m (≈0.002°)".
const familiarAreaHalfSideDeg = 0.002

// IsInFamiliarArea reports whether at least two trusted cells have a
// historical location within a square of half-side ~200 m (0.002°)
// centered on (lat, lon).
func (m *Model) IsInFamiliarArea(lat, lon float64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	query := model.LatLon{Lat: lat, Lon: lon}
	trustedNearby := 0
	for _, info := range m.cells {
		if info.SeenCount < TrustedThreshold {
			continue
		}
		for _, loc := range info.Locations {
			if model.WithinSquare(query, loc, familiarAreaHalfSideDeg) {
				trustedNearby++
				break
			}
		}
		if trustedNearby >= 2 {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the full cell map, used when persisting or
// testing round-trip serialization.
func (m *Model) Snapshot() map[string]Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Info, len(m.cells))
	for k, v := range m.cells {
		out[k] = *v
	}
	return out
}

// Restore replaces the in-memory table from a previously persisted
// snapshot (used on startup load and after an ephemeral-mode round trip).
func (m *Model) Restore(cells map[string]Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells = make(map[string]*Info, len(cells))
	for k, v := range cells {
		cp := v
		m.cells[k] = &cp
	}
}
