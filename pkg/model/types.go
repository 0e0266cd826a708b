// Package model defines the types shared by the cellular and ultrasonic
// detection engines: snapshots, anomalies, the boundary Detection record,
// and the small error taxonomy used for cross-engine reporting.
package model

import "time"

// NetworkGeneration is the inferred cellular generation of a cell.
type NetworkGeneration int

const (
	GenUnknown NetworkGeneration = iota
	Gen2G
	Gen3G
	Gen4G
	Gen5G
)

func (g NetworkGeneration) String() string {
	switch g {
	case Gen2G:
		return "2G"
	case Gen3G:
		return "3G"
	case Gen4G:
		return "4G"
	case Gen5G:
		return "5G"
	default:
		return "Unknown"
	}
}

// ThreatLevel is the severity assigned to an emitted anomaly.
type ThreatLevel int

const (
	ThreatInfo ThreatLevel = iota
	ThreatLow
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

func (t ThreatLevel) String() string {
	switch t {
	case ThreatCritical:
		return "CRITICAL"
	case ThreatHigh:
		return "HIGH"
	case ThreatMedium:
		return "MEDIUM"
	case ThreatLow:
		return "LOW"
	default:
		return "INFO"
	}
}

// SeverityFromScore maps an additive 0..100 score onto the severity table
// shared by the IMSI-catcher score and the tracking-likelihood score.
func SeverityFromScore(score int) ThreatLevel {
	switch {
	case score >= 90:
		return ThreatCritical
	case score >= 70:
		return ThreatHigh
	case score >= 50:
		return ThreatMedium
	case score >= 30:
		return ThreatLow
	default:
		return ThreatInfo
	}
}

// Protocol tags the transport a Detection was raised against.
type Protocol string

const (
	ProtocolCellular Protocol = "CELLULAR"
	ProtocolAudio    Protocol = "AUDIO"
)

// LatLon is a coarse location fix.
type LatLon struct {
	Lat float64
	Lon float64
}

// CellSnapshot is an immutable point-in-time read of the serving cell.
type CellSnapshot struct {
	Timestamp   time.Time
	CellID      *int64 // 64-bit: 5G NCI exceeds 32 bits
	LAC         *int32 // 2G/3G
	TAC         *int32 // 4G/5G
	MCC         *string
	MNC         *string
	SignalDBM   int
	NetworkType string // raw radio technology tag, e.g. "LTE", "NR"
	Generation  NetworkGeneration
	Location    *LatLon

	// EffectiveDisplayGeneration is the generation to show the user, after
	// applying the telephony adapter's on_display_override hint (spec.md
	// §6): NR_NSA/NR_NSA_MMWAVE/NR_ADVANCED over an LTE snapshot displays
	// as 5G. Anomaly analysis always uses Generation, never this field.
	EffectiveDisplayGeneration NetworkGeneration
}

// Clone returns a value copy; CellSnapshot is meant to be passed by value
// once constructed, but callers that built it via pointer fields benefit
// from an explicit deep-enough copy.
func (c CellSnapshot) Clone() CellSnapshot {
	out := c
	if c.CellID != nil {
		v := *c.CellID
		out.CellID = &v
	}
	if c.LAC != nil {
		v := *c.LAC
		out.LAC = &v
	}
	if c.TAC != nil {
		v := *c.TAC
		out.TAC = &v
	}
	if c.MCC != nil {
		v := *c.MCC
		out.MCC = &v
	}
	if c.MNC != nil {
		v := *c.MNC
		out.MNC = &v
	}
	if c.Location != nil {
		v := *c.Location
		out.Location = &v
	}
	return out
}

// StationaryCellChangeEvent records a cell-id transition observed while the
// device was classified as stationary.
type StationaryCellChangeEvent struct {
	Timestamp          time.Time
	FromCellID         int64
	ToCellID           int64
	ReturnedToOriginal bool
}

// MovementClass buckets a speed estimate into a coarse mobility class.
type MovementClass int

const (
	MovementUnknown MovementClass = iota
	MovementStationary
	MovementWalking
	MovementRunning
	MovementCycling
	MovementVehicle
	MovementHighSpeedVehicle
	MovementImpossible
)

func (m MovementClass) String() string {
	switch m {
	case MovementStationary:
		return "Stationary"
	case MovementWalking:
		return "Walking"
	case MovementRunning:
		return "Running"
	case MovementCycling:
		return "Cycling"
	case MovementVehicle:
		return "Vehicle"
	case MovementHighSpeedVehicle:
		return "HighSpeedVehicle"
	case MovementImpossible:
		return "Impossible"
	default:
		return "Unknown"
	}
}

// MovementAnalysis is the output of the Haversine-based speed estimate.
type MovementAnalysis struct {
	DistanceMeters float64
	SpeedKMH       float64
	Class          MovementClass
	ImpossibleJump bool
}

// CellularAnomalyType enumerates the cellular decision-ladder outcomes.
type CellularAnomalyType string

const (
	AnomalySuspiciousNetwork    CellularAnomalyType = "SUSPICIOUS_NETWORK"
	AnomalyEncryptionDowngrade  CellularAnomalyType = "ENCRYPTION_DOWNGRADE"
	AnomalyRapidCellSwitching  CellularAnomalyType = "RAPID_CELL_SWITCHING"
	AnomalySignalSpike         CellularAnomalyType = "SIGNAL_SPIKE"
	AnomalyUnknownCellFamiliar CellularAnomalyType = "UNKNOWN_CELL_IN_FAMILIAR_AREA"
	AnomalyLACTACChange        CellularAnomalyType = "LAC_TAC_CHANGE"
	AnomalyOperatorChange      CellularAnomalyType = "OPERATOR_CHANGE"
	AnomalyStationaryChange    CellularAnomalyType = "STATIONARY_CELL_CHANGE"
)

// ActionableDescription is the user-visible block attached to an emitted
// anomaly (spec.md §7): probable source, what it does, recommended action,
// and confirmation steps. Shared by both engines so it can live on the
// common anomaly records rather than duplicated per package.
type ActionableDescription struct {
	ProbableSource    string
	WhatItDoes        string
	RecommendedAction string
	ConfirmationSteps []string
}

// CellularAnomaly is the enrichment record produced by the cellular engine.
type CellularAnomaly struct {
	ID                  string
	Timestamp           time.Time
	Type                CellularAnomalyType
	Threat              ThreatLevel
	Confidence           int // == IMSIScore, 0..100
	ContributingFactors []string
	Description         ActionableDescription
	Location            *LatLon
	Snapshot            CellSnapshot
	Analysis            CellularAnalysis
}

// CellularAnalysis is the plain-data scoring input/output for the IMSI
// catcher score, kept separate from CellularAnomaly so it can be unit and
// property tested on its own (spec.md §9 "scoring as pure functions").
type CellularAnalysis struct {
	DowngradeChain        []NetworkGeneration
	CurrentGeneration     NetworkGeneration
	PreviousGeneration     NetworkGeneration
	EncryptionWeakOrNone  bool
	SignalDBM             int
	SignalSpike           bool
	DowngradeWithSpike    bool
	DowngradeWithUntrusted bool
	ImpossibleSpeed       bool
	Movement              MovementAnalysis
	TrustScore            int
	LACTACChangedNoCell   bool
	OperatorChanged       bool
	GenerationChanged     bool
	LAC                   *int32
	TAC                   *int32
	SuspiciousCellIDShape bool
	MCC                   string
	MNC                   string
	RecentChangesCount    int
	Oscillating           bool
	UnfamiliarArea        bool
}

// UltrasonicAnomalyType enumerates the ultrasonic confirmation outcomes.
type UltrasonicAnomalyType string

const (
	AnomalyAdvertisingBeacon  UltrasonicAnomalyType = "ADVERTISING_BEACON"
	AnomalyTrackingBeacon     UltrasonicAnomalyType = "TRACKING_BEACON"
	AnomalyRetailBeacon       UltrasonicAnomalyType = "RETAIL_BEACON"
	AnomalyAnalyticsBeacon    UltrasonicAnomalyType = "ANALYTICS_BEACON"
	AnomalyUnknownBeacon      UltrasonicAnomalyType = "UNKNOWN_BEACON"
)

// UltrasonicAnomaly is the enrichment record produced by the ultrasonic engine.
type UltrasonicAnomaly struct {
	ID                  string
	Timestamp           time.Time
	Type                UltrasonicAnomalyType
	Threat              ThreatLevel
	Confidence          int // == TrackingLikelihood, 0..100
	ContributingFactors []string
	Description         ActionableDescription
	Location            *LatLon
	FrequencyHz         float64
	Analysis            BeaconAnalysis
}

// DetectionMethod tags how a generic Detection was raised.
type DetectionMethod string

const (
	MethodIMSICatcherScore  DetectionMethod = "IMSI_CATCHER_SCORE"
	MethodUltrasonicBeacon  DetectionMethod = "ULTRASONIC_BEACON"
)

// Detection is the boundary record handed to storage/UI, independent of the
// engine-internal enrichment payload.
type Detection struct {
	Protocol            Protocol
	Method              DetectionMethod
	DeviceType          string
	SignalStrength      int
	Threat              ThreatLevel
	ThreatScore         int // 0..100
	ContributingFactors []string // serialized
	Timestamp           time.Time
}
