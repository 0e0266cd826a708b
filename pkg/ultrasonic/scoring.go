package ultrasonic

// PersistenceScore buckets a beacon's lifetime into the persistence factor
// used by the tracking-likelihood score (spec.md §4.8.2).
func PersistenceScore(lifetimeMinutes float64) float64 {
	switch {
	case lifetimeMinutes > 5:
		return 1.0
	case lifetimeMinutes > 2:
		return 0.7
	case lifetimeMinutes > 1:
		return 0.5
	case lifetimeMinutes > 0.5:
		return 0.3
	default:
		return 0.1
	}
}

// TrackingInput is the plain-data input to TrackingLikelihood, kept
// separate from model.BeaconDetection so the score stays a pure function
// over primitives (spec.md §9).
type TrackingInput struct {
	SourceConfidence   int
	FollowingUser      bool
	SeenAtHome         bool
	DistinctLocations  int
	PersistenceScore   float64
	DurationSeconds    float64
	AmplitudeProfile   string // "Pulsing" | "Modulated" | other
	SNRDb              float64
	FrequencyStable    bool
	ModulationMatched  bool
	Category           string // "Tracking" | "Advertising" | other
	Environment        float64 // EnvironmentalContext.BaseMultiplier()
	IsHome             bool
}

// TrackingLikelihood computes the 0..100 tracking-likelihood score (spec.md
// §4.8.2), additive then scaled by environment, halved again at home
// unless actively following.
func TrackingLikelihood(in TrackingInput) int {
	score := 0.4 * float64(in.SourceConfidence)

	if in.FollowingUser {
		score += 25
	}
	if in.SeenAtHome && in.DistinctLocations >= 2 {
		score += 30
	}
	if in.PersistenceScore > 0.5 {
		score += 15
	}
	if in.DurationSeconds >= 5 {
		score += 10
	}
	if in.AmplitudeProfile == "Pulsing" {
		score += 10
	}
	if in.AmplitudeProfile == "Modulated" {
		score += 8
	}
	if in.SNRDb > 20 {
		score += 10
	}
	if in.FrequencyStable {
		score += 12
	}
	if in.ModulationMatched {
		score += 15
	}
	if in.Category == "Tracking" {
		score += 10
	}
	if in.Category == "Advertising" {
		score += 5
	}

	score *= in.Environment

	if in.IsHome && !in.FollowingUser {
		score /= 2
	}

	return clamp100(int(score))
}

// FalsePositiveInput is the plain-data input to FalsePositiveLikelihood.
type FalsePositiveInput struct {
	ConcurrentBeacons int
	DetectionCount    int
	DurationSeconds   float64
	AmplitudeVariance float64
	FrequencyStdevHz  float64
	MatchedSource     bool // a known signature matched
	SourceConfidence  int
	SNRDb             float64
	FrequencyStable   bool
	DistinctLocations int
	MinutesElapsed    float64
	AmplitudeProfile  string // "Erratic" | "Steady" | "Pulsing" | "Modulated" | other
	InKnownFPRange    bool
	TVAdBand          bool
	ACRBand           bool
	AmplitudeCV       float64
	FollowingUser     bool
	SeenAtHome        bool
	OutdoorLikely     bool
	EVAVASBand        bool // 17-20 kHz
	ModulationMatched bool
}

// FalsePositiveLikelihood computes the 0..100 false-positive score (spec.md
// §4.8.3), an explicitly additive-then-subtractive heuristic.
func FalsePositiveLikelihood(in FalsePositiveInput) int {
	score := 0

	if in.ConcurrentBeacons > 4 {
		score += 35
	}
	if in.ConcurrentBeacons >= 3 {
		score += 15
	}
	if in.DetectionCount <= 5 {
		score += 20
	}
	if in.DurationSeconds < 5 && in.DetectionCount <= 3 {
		score += 20
	}
	if in.AmplitudeVariance > 50 {
		score += 25
	}
	if in.AmplitudeVariance > in.FrequencyStdevHz*in.FrequencyStdevHz {
		score += 10
	}
	if !in.MatchedSource && in.SNRDb < 25 {
		score += 15
	}
	if !in.FrequencyStable {
		score += 20
	}
	if in.DistinctLocations <= 1 && in.MinutesElapsed > 2 {
		score += 10
	}
	if in.AmplitudeProfile == "Erratic" {
		score += 25
	}
	if in.AmplitudeProfile == "Steady" && !in.MatchedSource {
		score += 15
	}
	if in.InKnownFPRange && !in.MatchedSource {
		score += 15
	}
	if in.TVAdBand && in.DistinctLocations >= 2 && !in.FollowingUser && in.AmplitudeCV >= 0.2 {
		score += 30
	}
	if in.ACRBand && !in.FollowingUser && in.AmplitudeCV > 0.2 {
		score += 25
	}
	if in.EVAVASBand && in.DurationSeconds < 15 && in.DetectionCount <= 5 && in.OutdoorLikely && !in.FollowingUser {
		score += 35
	}

	if in.FollowingUser {
		score -= 30
	}
	if in.SeenAtHome && in.DistinctLocations >= 2 {
		score -= 40
	}
	if PersistenceScore(in.MinutesElapsed) > 0.7 {
		score -= 20
	}
	if in.MatchedSource && in.SourceConfidence > 70 {
		score -= 35
	}
	if in.AmplitudeProfile == "Pulsing" || in.AmplitudeProfile == "Modulated" {
		score -= 15
	}
	if in.FrequencyStable {
		score -= 20
	}
	if in.ModulationMatched {
		score -= 25
	}

	return clamp100(score)
}
