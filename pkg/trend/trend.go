// Package trend fits linear-regression trend lines over short windows of
// cellular signal-strength and ultrasonic beacon-amplitude samples,
// adapting the teacher's analytics.Trend shape (pkg/analytics/engine.go)
// from a placeholder into a real computation backed by
// github.com/sajari/regression.
package trend

import (
	"errors"
	"time"

	"github.com/sajari/regression"
)

// ErrInsufficientSamples is returned when fewer than two samples are given.
var ErrInsufficientSamples = errors.New("trend: need at least two samples")

// Sample pairs a value with the time it was observed.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// Trend is a trend-analysis result (spec.md §9's ambient analytics layer,
// shaped after the teacher's analytics.Trend).
type Trend struct {
	Direction  string // "improving", "stable", "degrading"
	Slope      float64
	Confidence float64 // R^2 of the fit, 0..1
	Magnitude  string  // "small", "medium", "large"
	Duration   string  // "short", "medium", "long"
	Prediction *float64
}

// Fit runs ordinary least squares over samples against time-since-first-
// sample, in seconds. higherIsBetter controls how the slope sign maps to
// Direction: for signal strength (dBm, less negative is better) pass true;
// for false-positive-prone amplitude noise where a rising trend is itself
// the concern, pass false.
func Fit(samples []Sample, higherIsBetter bool) (*Trend, error) {
	if len(samples) < 2 {
		return nil, ErrInsufficientSamples
	}

	first := samples[0].Timestamp
	r := new(regression.Regression)
	r.SetObserved("value")
	r.SetVar(0, "seconds_elapsed")
	for _, s := range samples {
		elapsed := s.Timestamp.Sub(first).Seconds()
		r.Train(regression.DataPoint(s.Value, []float64{elapsed}))
	}
	if err := r.Run(); err != nil {
		return nil, err
	}

	slope := r.Coeff(1)
	confidence := r.R2
	if confidence < 0 {
		confidence = 0
	}

	t := &Trend{
		Slope:      slope,
		Confidence: confidence,
		Direction:  direction(slope, higherIsBetter),
		Magnitude:  magnitude(slope),
		Duration:   duration(samples[len(samples)-1].Timestamp.Sub(first)),
	}

	lastElapsed := samples[len(samples)-1].Timestamp.Sub(first).Seconds()
	if predicted, err := r.Predict([]float64{lastElapsed + 60}); err == nil {
		t.Prediction = &predicted
	}

	return t, nil
}

func direction(slope float64, higherIsBetter bool) string {
	const flat = 0.01
	switch {
	case slope > flat:
		if higherIsBetter {
			return "improving"
		}
		return "degrading"
	case slope < -flat:
		if higherIsBetter {
			return "degrading"
		}
		return "improving"
	default:
		return "stable"
	}
}

func magnitude(slope float64) string {
	abs := slope
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > 1.0:
		return "large"
	case abs > 0.1:
		return "medium"
	default:
		return "small"
	}
}

func duration(span time.Duration) string {
	switch {
	case span < 2*time.Minute:
		return "short"
	case span < 15*time.Minute:
		return "medium"
	default:
		return "long"
	}
}
