// Package dsp implements the single-frequency Goertzel magnitude extractor
// and the adaptive noise-floor estimator used by the ultrasonic engine
// (spec.md §4.2, §4.3). A full FFT is explicitly out of scope per spec.md
// §1 non-goals; Goertzel is cheaper when only a handful of target
// frequencies need to be swept per window.
package dsp

import "math"

// magnitudeFloor is added before taking 20*log10 to avoid -Inf on a
// silent window (spec.md §4.2 "numerical edge").
const magnitudeFloor = 1e-10

// Goertzel computes the magnitude of target frequency targetHz within a PCM
// window sampled at sampleRate Hz. Samples are normalized to [-1, 1] before
// the recurrence runs.
func Goertzel(samples []int16, targetHz, sampleRate float64) float64 {
	if len(samples) == 0 || sampleRate <= 0 {
		return 0
	}

	omega := 2 * math.Pi * targetHz / sampleRate
	coeff := 2 * math.Cos(omega)

	var s1, s2 float64
	for _, raw := range samples {
		sample := float64(raw) / 32768.0
		s0 := sample + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - s1*s2*coeff
	if power < 0 {
		power = -power
	}
	return math.Sqrt(power)
}

// MagnitudeDB converts a Goertzel magnitude into decibels, applying the
// numerical floor before log10 (spec.md §4.2).
func MagnitudeDB(magnitude float64) float64 {
	return 20 * math.Log10(magnitude+magnitudeFloor)
}

// SweepStepHz is the frequency-bin step used when scanning the ultrasonic
// range (spec.md §4.8).
const SweepStepHz = 100.0

// Sweep runs Goertzel across [startHz, endHz] in SweepStepHz steps and
// returns the magnitude in dB at each target frequency, keyed by the exact
// target frequency scanned (not yet rounded to a bucket).
func Sweep(samples []int16, sampleRate, startHz, endHz float64) map[float64]float64 {
	out := make(map[float64]float64)
	for f := startHz; f <= endHz; f += SweepStepHz {
		mag := Goertzel(samples, f, sampleRate)
		out[f] = MagnitudeDB(mag)
	}
	return out
}

// NyquistClamp returns the highest usable target frequency for sampleRate,
// never exceeding endHz (spec.md §4.8: "upper-clipped by Nyquist").
func NyquistClamp(endHz, sampleRate float64) float64 {
	nyquist := sampleRate / 2
	if endHz > nyquist {
		return nyquist
	}
	return endHz
}
