// Package persistence implements the PersistenceSink boundary (spec.md §9
// "persistence as a boundary"): the engines never talk to a database
// directly, only to this narrow interface. A no-op implementation backs
// ephemeral mode and tests; the production implementation is backed by
// bbolt (pkg/persistence/bolt_sink.go).
package persistence

// SeenCellTowerEntity is the persisted-record layout for a cell the device
// has observed (spec.md §6).
type SeenCellTowerEntity struct {
	CellID      string `json:"cell_id"`
	MCC         string `json:"mcc"`
	MNC         string `json:"mnc"`
	NetworkType string `json:"network_type"`
	FirstSeen   int64  `json:"first_seen"`
	LastSeen    int64  `json:"last_seen"`
}

// TrustedCellEntity is the persisted-record layout for a TrustedCellInfo,
// with locations serialized as a JSON array of [lat,lon] pairs (spec.md §6).
type TrustedCellEntity struct {
	CellID      string      `json:"cell_id"`
	SeenCount   int         `json:"seen_count"`
	FirstSeen   int64       `json:"first_seen"`
	LastSeen    int64       `json:"last_seen"`
	Locations   [][2]float64 `json:"locations"` // JSON array of [lat,lon]
	Operator    string      `json:"operator"`
	NetworkType string      `json:"network_type"`
}

// CellularEventEntity is the persisted-record layout for a timeline event.
type CellularEventEntity struct {
	Timestamp   int64  `json:"timestamp"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CellID      string `json:"cell_id,omitempty"`
}

// Sink is the narrow persistence interface the engines depend on. Shape is
// preserved across versions for forward compatibility (spec.md §6).
type Sink interface {
	InsertSeenCell(entity SeenCellTowerEntity) error
	InsertTrustedCell(entity TrustedCellEntity) error
	InsertEvent(entity CellularEventEntity) error
	TrimEvents(keep int) error

	DeleteAllSeenCells() error
	DeleteAllTrustedCells() error
	DeleteAllEvents() error

	SnapshotSeenCells() ([]SeenCellTowerEntity, error)
	SnapshotTrustedCells() ([]TrustedCellEntity, error)
	SnapshotEvents() ([]CellularEventEntity, error)

	// SetEphemeral toggles ephemeral mode. Transitioning off->on purges all
	// data; transitioning on->off re-persists the caller-supplied current
	// in-memory snapshot (spec.md §4.10).
	SetEphemeral(enabled bool, onDisableResync func() ([]TrustedCellEntity, []CellularEventEntity)) error

	Close() error
}
