// Package ultrasonic implements the ultrasonic cross-device tracking
// beacon engine: scan-cycle orchestration, per-frequency beacon lifecycle,
// confirmation gating, attribution, and the tracking-likelihood /
// false-positive scoring pair (spec.md §4.8).
package ultrasonic

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/meshguard/sentinel/pkg/model"
)

// MinDetectionsToConfirm is the detection_count at which a beacon's
// confirmation gate runs, exactly once (spec.md §4.8).
const MinDetectionsToConfirm = 5

// QualifyingCountPerScan is the minimum number of qualifying amplitudes a
// 100 Hz bucket must see within one scan to be aggregated (spec.md §4.8).
const QualifyingCountPerScan = 3

// BeaconExpiry is the last_detected age at which a beacon is removed
// (spec.md §3).
const BeaconExpiry = 120 * time.Second

const (
	amplitudeHistoryCap = 50
	frequencyHistoryCap = 30
	locationHistoryCap  = 20
)

// bucketKeyHz rounds freqHz to the nearest 100 Hz bucket used as the
// BeaconDetection table key (spec.md §3 "keyed by frequency rounded to
// 100 Hz").
func bucketKeyHz(freqHz float64) int64 {
	return int64(math.Round(freqHz/100) * 100)
}

// Table is the thread-safe, per-frequency-bucket beacon lifecycle store
// owned exclusively by the ultrasonic engine (spec.md §5, §9).
type Table struct {
	mu       sync.Mutex
	beacons  map[int64]*model.BeaconDetection
}

// NewTable creates an empty beacon table.
func NewTable() *Table {
	return &Table{beacons: make(map[int64]*model.BeaconDetection)}
}

// Aggregate folds one scan's qualifying readings for a single 100 Hz bucket
// into the table, creating a new BeaconDetection on first sight (spec.md
// §4.8 "per-scan aggregation"). repFreqHz/repAmplitudeDB are the scan's
// representative (mean) readings for the bucket.
func (t *Table) Aggregate(bucketHz int64, repFreqHz, repAmplitudeDB float64, loc *model.LatLon, env model.EnvironmentalContext, now time.Time) (detection *model.BeaconDetection, isNew bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bd, ok := t.beacons[bucketHz]
	if !ok {
		bd = &model.BeaconDetection{
			FrequencyHz:     repFreqHz,
			FirstDetected:   now,
			LastDetected:    now,
			PeakAmplitudeDB: repAmplitudeDB,
			DetectionCount:  1,
			Environment:     env,
		}
		appendHistories(bd, repFreqHz, repAmplitudeDB, loc, now)
		t.beacons[bucketHz] = bd
		return bd, true
	}

	bd.LastDetected = now
	bd.DetectionCount++
	if repAmplitudeDB > bd.PeakAmplitudeDB {
		bd.PeakAmplitudeDB = repAmplitudeDB
	}
	appendHistories(bd, repFreqHz, repAmplitudeDB, loc, now)
	return bd, false
}

func appendHistories(bd *model.BeaconDetection, freqHz, amplitudeDB float64, loc *model.LatLon, now time.Time) {
	bd.AmplitudeHistory = append(bd.AmplitudeHistory, model.AmplitudeSample{Timestamp: now, AmplitudeDB: amplitudeDB})
	if len(bd.AmplitudeHistory) > amplitudeHistoryCap {
		bd.AmplitudeHistory = bd.AmplitudeHistory[len(bd.AmplitudeHistory)-amplitudeHistoryCap:]
	}

	bd.FrequencyHistory = append(bd.FrequencyHistory, model.FrequencySample{Timestamp: now, FrequencyHz: freqHz})
	if len(bd.FrequencyHistory) > frequencyHistoryCap {
		bd.FrequencyHistory = bd.FrequencyHistory[len(bd.FrequencyHistory)-frequencyHistoryCap:]
	}

	if loc != nil {
		bd.LocationHistory = append(bd.LocationHistory, model.LocationSample{Timestamp: now, Location: *loc})
		if len(bd.LocationHistory) > locationHistoryCap {
			bd.LocationHistory = bd.LocationHistory[len(bd.LocationHistory)-locationHistoryCap:]
		}
	}
}

// Get returns a copy of the detection at bucketHz, if present.
func (t *Table) Get(bucketHz int64) (model.BeaconDetection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bd, ok := t.beacons[bucketHz]
	if !ok {
		return model.BeaconDetection{}, false
	}
	return *bd, true
}

// MarkConfirmed flips the Confirmed flag once, used by the engine right
// after the confirmation gate runs so it fires exactly once per beacon.
func (t *Table) MarkConfirmed(bucketHz int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bd, ok := t.beacons[bucketHz]; ok {
		bd.Confirmed = true
	}
}

// ActiveCount returns the number of live (non-expired) beacon buckets,
// used as the "concurrent beacons" false-positive input (spec.md §4.8.3).
func (t *Table) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.beacons)
}

// Confirmed returns a copy of every beacon with detection_count >= 5, the
// set exposed on the active_beacons stream (spec.md §4.8 "UI streams
// expose only beacons with detection_count >= 5").
func (t *Table) Confirmed() []model.BeaconDetection {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.BeaconDetection, 0, len(t.beacons))
	for _, bd := range t.beacons {
		if bd.DetectionCount >= MinDetectionsToConfirm {
			out = append(out, *bd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FrequencyHz < out[j].FrequencyHz })
	return out
}

// ExpireStale removes every beacon whose last_detected is older than
// BeaconExpiry and returns the removed copies, for BEACON_ENDED timeline
// events (spec.md §3).
func (t *Table) ExpireStale(now time.Time) []model.BeaconDetection {
	t.mu.Lock()
	defer t.mu.Unlock()

	var expired []model.BeaconDetection
	for k, bd := range t.beacons {
		if now.Sub(bd.LastDetected) > BeaconExpiry {
			expired = append(expired, *bd)
			delete(t.beacons, k)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].FrequencyHz < expired[j].FrequencyHz })
	return expired
}
