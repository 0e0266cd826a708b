package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFitInsufficientSamples(t *testing.T) {
	_, err := Fit(nil, true)
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	_, err = Fit([]Sample{{Timestamp: time.Now(), Value: 1}}, true)
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestFitImprovingSignal(t *testing.T) {
	base := time.Now()
	samples := make([]Sample, 0, 10)
	for i := 0; i < 10; i++ {
		samples = append(samples, Sample{
			Timestamp: base.Add(time.Duration(i) * 10 * time.Second),
			Value:     -100 + float64(i)*2, // signal climbing toward 0 dBm
		})
	}

	trend, err := Fit(samples, true)
	assert.NoError(t, err)
	assert.Equal(t, "improving", trend.Direction)
	assert.Greater(t, trend.Slope, 0.0)
	assert.Greater(t, trend.Confidence, 0.9)
	assert.NotNil(t, trend.Prediction)
}

func TestFitDegradingSignal(t *testing.T) {
	base := time.Now()
	samples := make([]Sample, 0, 10)
	for i := 0; i < 10; i++ {
		samples = append(samples, Sample{
			Timestamp: base.Add(time.Duration(i) * 10 * time.Second),
			Value:     -60 - float64(i)*3,
		})
	}

	trend, err := Fit(samples, true)
	assert.NoError(t, err)
	assert.Equal(t, "degrading", trend.Direction)
	assert.Less(t, trend.Slope, 0.0)
}

func TestFitStableAmplitude(t *testing.T) {
	base := time.Now()
	samples := []Sample{
		{Timestamp: base, Value: 40.0},
		{Timestamp: base.Add(10 * time.Second), Value: 40.1},
		{Timestamp: base.Add(20 * time.Second), Value: 39.9},
		{Timestamp: base.Add(30 * time.Second), Value: 40.05},
	}

	trend, err := Fit(samples, false)
	assert.NoError(t, err)
	assert.Equal(t, "stable", trend.Direction)
	assert.Equal(t, "small", trend.Magnitude)
}

func TestDurationBuckets(t *testing.T) {
	assert.Equal(t, "short", duration(30*time.Second))
	assert.Equal(t, "medium", duration(5*time.Minute))
	assert.Equal(t, "long", duration(20*time.Minute))
}

func TestMagnitudeBuckets(t *testing.T) {
	assert.Equal(t, "small", magnitude(0.05))
	assert.Equal(t, "medium", magnitude(0.5))
	assert.Equal(t, "large", magnitude(5))
}
