package model

import "time"

// AmplitudeProfile buckets a beacon's amplitude-history shape (spec.md
// §4.8.1).
type AmplitudeProfile int

const (
	ProfileSteady AmplitudeProfile = iota
	ProfilePulsing
	ProfileErratic
	ProfileModulated
)

func (p AmplitudeProfile) String() string {
	switch p {
	case ProfileSteady:
		return "Steady"
	case ProfilePulsing:
		return "Pulsing"
	case ProfileErratic:
		return "Erratic"
	case ProfileModulated:
		return "Modulated"
	default:
		return "Unknown"
	}
}

// BeaconCategory is the coarse business-purpose bucket a beacon attributes
// to (spec.md §4.8.1).
type BeaconCategory int

const (
	CategoryUnknownBeacon BeaconCategory = iota
	CategoryAdvertising
	CategoryTracking
	CategoryRetail
	CategoryAnalytics
)

func (c BeaconCategory) String() string {
	switch c {
	case CategoryAdvertising:
		return "Advertising"
	case CategoryTracking:
		return "Tracking"
	case CategoryRetail:
		return "Retail"
	case CategoryAnalytics:
		return "Analytics"
	default:
		return "Unknown"
	}
}

// EnvironmentalContext is the coarse location classification used to scale
// the tracking-likelihood score (spec.md §4.8.2).
type EnvironmentalContext int

const (
	EnvUnknown EnvironmentalContext = iota
	EnvHome
	EnvWork
	EnvRetail
	EnvOutdoorRandom
)

// BaseMultiplier is the tracking-likelihood scaling factor for this context
// (spec.md §4.8.2).
func (e EnvironmentalContext) BaseMultiplier() float64 {
	switch e {
	case EnvHome:
		return 0.5
	case EnvWork:
		return 0.6
	case EnvRetail:
		return 0.7
	case EnvOutdoorRandom:
		return 1.2
	default:
		return 1.0
	}
}

// AmplitudeSample pairs one qualifying-amplitude reading with its capture
// time, so profile/CV computations can reason about ordering.
type AmplitudeSample struct {
	Timestamp time.Time
	AmplitudeDB float64
}

// FrequencySample is one Goertzel-confirmed frequency reading.
type FrequencySample struct {
	Timestamp time.Time
	FrequencyHz float64
}

// LocationSample pairs a coarse fix with the time it was observed.
type LocationSample struct {
	Timestamp time.Time
	Location  LatLon
}

// BeaconDetection is the per-frequency-bucket lifecycle record owned by the
// ultrasonic engine, keyed by frequency rounded to 100 Hz (spec.md §3).
type BeaconDetection struct {
	FrequencyHz     float64
	FirstDetected   time.Time
	LastDetected    time.Time
	PeakAmplitudeDB float64 // monotone non-decreasing over the beacon's lifetime
	DetectionCount  int

	AmplitudeHistory []AmplitudeSample // bounded <=50
	FrequencyHistory []FrequencySample // bounded <=30
	LocationHistory  []LocationSample  // bounded <=20

	Environment EnvironmentalContext
	Confirmed   bool // true once detection_count has reached MIN_DETECTIONS_TO_CONFIRM
}

// BeaconAnalysis is the plain-data output of analyzing one BeaconDetection
// (spec.md §4.8.1), kept separate from UltrasonicAnomaly so the scoring
// functions in §4.8.2/§4.8.3 stay pure (spec.md §9).
type BeaconAnalysis struct {
	DurationMS       int64
	AmplitudeProfile AmplitudeProfile
	FrequencyStable  bool
	FrequencyStdevHz float64
	SNRDb            float64

	MatchedSource    string // vendor name, or "" for unknown
	SourceConfidence int
	Category         BeaconCategory

	DistinctLocations  int
	AmplitudeCV        float64
	AvgDwellMS         int64
	FollowingUser      bool
	SeenAtHome         bool
	PersistenceMinutes float64

	TrackingLikelihood      int
	FalsePositiveLikelihood int
}
