package ultrasonic

import (
	"math"
	"time"

	"github.com/meshguard/sentinel/pkg/model"
	"github.com/meshguard/sentinel/pkg/signatures"
)

// AttributionToleranceHz is the window used to consult the signature
// catalog (spec.md §4.8.1 "freq +-100 Hz").
const AttributionToleranceHz = 100.0

// FollowingClusterRadiusMeters is the greedy-clustering radius used for
// distinct-location counting (spec.md §4.8.1).
const FollowingClusterRadiusMeters = 100.0

// Frequency bands referenced by source-attribution fallback and the
// cross-location "following" heuristic (spec.md §4.8.1).
var (
	tvAdBandLowHz, tvAdBandHighHz       = 17400.0, 18600.0
	retailBandLowHz, retailBandHighHz   = 19900.0, 20300.0
	acrBandLowHz, acrBandHighHz         = 20100.0, 21600.0
)

func inBand(freq, low, high float64) bool { return freq >= low && freq <= high }

// AmplitudeProfileOf classifies the shape of an amplitude history (spec.md
// §4.8.1): stdev<2dB is Steady; otherwise the mean-crossing rate buckets
// into Pulsing/Erratic/Modulated.
func AmplitudeProfileOf(history []model.AmplitudeSample) model.AmplitudeProfile {
	if len(history) == 0 {
		return model.ProfileSteady
	}
	values := make([]float64, len(history))
	for i, s := range history {
		values[i] = s.AmplitudeDB
	}
	if stdev(values) < 2.0 {
		return model.ProfileSteady
	}

	rate := meanCrossingRate(values)
	switch {
	case rate > 0.6:
		return model.ProfileErratic
	case rate >= 0.3:
		return model.ProfilePulsing
	default:
		return model.ProfileModulated
	}
}

func meanCrossingRate(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	crossings := 0
	for i := 1; i < len(values); i++ {
		if (values[i-1] < m) != (values[i] < m) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(values)-1)
}

// FrequencyStability returns the stdev of a frequency history and whether
// it is stable (<=10 Hz stdev, spec.md §4.8.1).
func FrequencyStability(history []model.FrequencySample) (stdevHz float64, stable bool) {
	if len(history) == 0 {
		return 0, true
	}
	values := make([]float64, len(history))
	for i, s := range history {
		values[i] = s.FrequencyHz
	}
	stdevHz = stdev(values)
	return stdevHz, stdevHz <= 10.0
}

// Attribution is the result of consulting the signature catalog for a
// beacon's center frequency (spec.md §4.8.1).
type Attribution struct {
	MatchedSource      string
	SourceConfidence   int
	Category           model.BeaconCategory
	ModulationMatched  bool
}

// Attribute runs source attribution: known-signature match first, then
// the unknown fallback, per spec.md §4.8.1.
func Attribute(freqHz float64, profile model.AmplitudeProfile, frequencyStable bool) Attribution {
	if sig, ok := signatures.FindUltrasonic(freqHz, AttributionToleranceHz); ok {
		confidence := purposeBaseConfidence(sig.Purpose)
		if frequencyStable {
			confidence += 10
		}
		modMatch := modulationMatches(profile, sig.ExpectedModulation)
		if modMatch {
			confidence += 10
		}
		return Attribution{
			MatchedSource:     sig.Vendor,
			SourceConfidence:  clamp100(confidence),
			Category:          categoryForPurpose(sig.Purpose),
			ModulationMatched: modMatch,
		}
	}

	confidence := 25
	if frequencyStable {
		confidence += 15
	}
	if profile == model.ProfilePulsing || profile == model.ProfileModulated {
		confidence += 10
	}
	return Attribution{
		MatchedSource:     "",
		SourceConfidence:  clamp100(confidence),
		Category:          categoryByBandFallback(freqHz),
		ModulationMatched: false,
	}
}

func purposeBaseConfidence(p signatures.Purpose) int {
	switch p {
	case signatures.PurposeAdTracking:
		return 90
	case signatures.PurposeTvAttribution:
		return 85
	case signatures.PurposeCrossDeviceLinking:
		return 90
	case signatures.PurposeRetailAnalytics:
		return 75
	case signatures.PurposeLocationVerify:
		return 70
	case signatures.PurposePresenceDetection:
		return 65
	default:
		return 60
	}
}

func categoryForPurpose(p signatures.Purpose) model.BeaconCategory {
	switch p {
	case signatures.PurposeAdTracking, signatures.PurposeTvAttribution:
		return model.CategoryAdvertising
	case signatures.PurposeCrossDeviceLinking:
		return model.CategoryTracking
	case signatures.PurposeRetailAnalytics:
		return model.CategoryRetail
	case signatures.PurposeTvViewershipACR:
		return model.CategoryAnalytics
	default:
		return model.CategoryUnknownBeacon
	}
}

func categoryByBandFallback(freqHz float64) model.BeaconCategory {
	switch {
	case inBand(freqHz, tvAdBandLowHz, tvAdBandHighHz):
		return model.CategoryAdvertising
	case inBand(freqHz, retailBandLowHz, retailBandHighHz):
		return model.CategoryRetail
	case inBand(freqHz, acrBandLowHz, acrBandHighHz):
		return model.CategoryAnalytics
	default:
		return model.CategoryUnknownBeacon
	}
}

func modulationMatches(profile model.AmplitudeProfile, expected signatures.Modulation) bool {
	switch expected {
	case signatures.ModFSK:
		return profile == model.ProfilePulsing
	case signatures.ModPSK, signatures.ModCHIRP:
		return profile == model.ProfileModulated
	case signatures.ModSTEADY:
		return profile == model.ProfileSteady
	default:
		return false
	}
}

// FollowingResult is the output of the cross-location "following" check.
type FollowingResult struct {
	DistinctLocations int
	AmplitudeCV       float64
	AvgDwellMS        int64
	Following         bool
}

// AnalyzeFollowing implements spec.md §4.8.1's strict cross-location
// check, tuned to avoid neighborhood-TV false positives.
func AnalyzeFollowing(freqHz float64, amplitudeHistory []model.AmplitudeSample, locationHistory []model.LocationSample, frequencyStable bool) FollowingResult {
	points := make([]model.LatLon, len(locationHistory))
	for i, s := range locationHistory {
		points[i] = s.Location
	}
	clusters := model.ClusterByRadius(points, FollowingClusterRadiusMeters)
	distinct := len(clusters)

	values := make([]float64, len(amplitudeHistory))
	for i, s := range amplitudeHistory {
		values[i] = s.AmplitudeDB
	}
	cv := coefficientOfVariation(values)

	avgDwell := averageDwellMS(locationHistory, FollowingClusterRadiusMeters)

	result := FollowingResult{DistinctLocations: distinct, AmplitudeCV: cv, AvgDwellMS: avgDwell}
	if distinct < 3 {
		return result
	}

	dwellSeconds := float64(avgDwell) / 1000.0
	switch {
	case inBand(freqHz, tvAdBandLowHz, tvAdBandHighHz):
		result.Following = cv < 0.15 && frequencyStable && dwellSeconds >= 30
	case inBand(freqHz, retailBandLowHz, retailBandHighHz):
		result.Following = cv < 0.25
	case inBand(freqHz, acrBandLowHz, acrBandHighHz):
		result.Following = cv < 0.12 && dwellSeconds >= 60
	default:
		result.Following = cv < 0.30 || dwellSeconds >= 20
	}
	return result
}

// averageDwellMS groups location samples into 100 m clusters (by arrival
// order, matching AnalyzeFollowing's clustering) and averages the
// max-minus-min timestamp span within each group.
func averageDwellMS(history []model.LocationSample, radiusMeters float64) int64 {
	if len(history) == 0 {
		return 0
	}
	type group struct {
		center model.LatLon
		min, max time.Time
	}
	var groups []group
	for _, s := range history {
		placed := false
		for i := range groups {
			if model.HaversineMeters(groups[i].center, s.Location) <= radiusMeters {
				if s.Timestamp.Before(groups[i].min) {
					groups[i].min = s.Timestamp
				}
				if s.Timestamp.After(groups[i].max) {
					groups[i].max = s.Timestamp
				}
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, group{center: s.Location, min: s.Timestamp, max: s.Timestamp})
		}
	}
	var total int64
	for _, g := range groups {
		total += g.max.Sub(g.min).Milliseconds()
	}
	return total / int64(len(groups))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 0
	}
	return stdev(values) / math.Abs(m)
}

func clamp100(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
