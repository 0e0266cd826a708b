package dsp

import "sync"

// NoiseFloorEstimator maintains an exponential moving average of the
// 1-5 kHz reference band's mean magnitude, used as the baseline for the
// ultrasonic engine's SNR gate (spec.md §4.3).
type NoiseFloorEstimator struct {
	mu    sync.Mutex
	floor float64
}

// NewNoiseFloorEstimator starts the floor at -60 dB, the spec's initial
// value before any window has been observed.
func NewNoiseFloorEstimator() *NoiseFloorEstimator {
	return &NoiseFloorEstimator{floor: -60}
}

// ReferenceBandLowHz/HighHz bound the non-ultrasonic reference band used to
// track ambient noise (spec.md §4.3).
const (
	ReferenceBandLowHz  = 1000.0
	ReferenceBandHighHz = 5000.0
)

// Update folds the mean dB of the 1-5 kHz bins from a freshly swept window
// into the running estimate: floor <- 0.95*floor + 0.05*avg_low.
func (n *NoiseFloorEstimator) Update(sweepDB map[float64]float64) {
	var sum float64
	var count int
	for freq, db := range sweepDB {
		if freq >= ReferenceBandLowHz && freq <= ReferenceBandHighHz {
			sum += db
			count++
		}
	}
	if count == 0 {
		return
	}
	avgLow := sum / float64(count)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.floor = 0.95*n.floor + 0.05*avgLow
}

// Floor returns the current noise-floor estimate in dB.
func (n *NoiseFloorEstimator) Floor() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.floor
}
