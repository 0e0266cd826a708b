package model

import "time"

// EventType enumerates the kinds of entries that land on a timeline.
type EventType string

const (
	EventInfo           EventType = "INFO"
	EventAnomaly        EventType = "ANOMALY"
	EventCellChange     EventType = "CELL_CHANGE"
	EventBeaconStarted  EventType = "BEACON_STARTED"
	EventBeaconEnded    EventType = "BEACON_ENDED"
)

// TimelineEvent is one entry in the bounded, newest-first event deque
// shared by both engines (spec.md §4.9).
type TimelineEvent struct {
	Timestamp   time.Time
	Type        EventType
	Title       string
	Description string
	CellID      *int64
	FrequencyHz *float64
	Threat      *ThreatLevel
	Location    *LatLon
}
