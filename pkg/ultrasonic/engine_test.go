package ultrasonic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshguard/sentinel/pkg/config"
	"github.com/meshguard/sentinel/pkg/logx"
	"github.com/meshguard/sentinel/pkg/model"
	"github.com/meshguard/sentinel/pkg/persistence"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfgManager, err := config.Load("")
	require.NoError(t, err)
	logger := logx.NewLogger("error", "test")
	return New(logger, cfgManager, persistence.NoopSink{}, nil)
}

// aggregateCycles replays n scan cycles of an identical reading into bucketHz,
// one cycle per step of the given interval starting at start, mirroring what
// RunScanCycle does per bucket once QualifyingCountPerScan is met within a
// cycle. Returns the detection as it stands after the final cycle.
func aggregateCycles(e *Engine, bucketHz int64, freqHz, amplitudeDB float64, n int, start time.Time, interval time.Duration) *model.BeaconDetection {
	var bd *model.BeaconDetection
	for i := 0; i < n; i++ {
		bd, _ = e.table.Aggregate(bucketHz, freqHz, amplitudeDB, nil, e.environment, start.Add(time.Duration(i)*interval))
	}
	return bd
}

func TestRunScanCycleNoReadsEmitsNothing(t *testing.T) {
	engine := newTestEngine(t)

	anomalies, err := engine.RunScanCycle(nil, nil, time.Now())

	require.NoError(t, err)
	assert.Empty(t, anomalies)
	assert.Empty(t, engine.table.Confirmed())
}

func TestConfirmationGateEmitsForMatchedTrackingBeacon(t *testing.T) {
	engine := newTestEngine(t)
	start := time.Now()

	// 19,000 Hz matches the Lisnr cross-device-linking signature within the
	// catalog's attribution tolerance; five identical, evenly spaced
	// detections spanning six seconds give a clean, unambiguous pass
	// through every confirmation-gate clause.
	bd := aggregateCycles(engine, 19000, 19000, 60, MinDetectionsToConfirm, start, 1500*time.Millisecond)
	require.NotNil(t, bd)
	require.Equal(t, MinDetectionsToConfirm, bd.DetectionCount)

	now := start.Add(time.Duration(MinDetectionsToConfirm-1) * 1500 * time.Millisecond)
	anomaly := engine.runConfirmationGate(*bd, now)

	require.NotNil(t, anomaly, "a frequency-stable, source-matched, multi-second detection should confirm")
	assert.Equal(t, model.AnomalyTrackingBeacon, anomaly.Type)
	assert.Equal(t, 19000.0, anomaly.FrequencyHz)
	assert.GreaterOrEqual(t, anomaly.Confidence, 40)
}

func TestConfirmationGateSuppressesShortLivedDetection(t *testing.T) {
	engine := newTestEngine(t)
	start := time.Now()

	// Five detections crammed into under a second never clear the 5-second
	// minimum duration, regardless of how clean the signal looks.
	bd := aggregateCycles(engine, 19000, 19000, 60, MinDetectionsToConfirm, start, 100*time.Millisecond)
	require.NotNil(t, bd)

	now := start.Add(time.Duration(MinDetectionsToConfirm-1) * 100 * time.Millisecond)
	anomaly := engine.runConfirmationGate(*bd, now)

	assert.Nil(t, anomaly, "sub-5-second beacons must be suppressed regardless of other factors")
}

func TestExpireBeaconsRemovesStaleEntriesAndLogsEvent(t *testing.T) {
	engine := newTestEngine(t)
	start := time.Now()

	bd, isNew := engine.table.Aggregate(19000, 19000, 60, nil, engine.environment, start)
	require.True(t, isNew)
	require.NotNil(t, bd)
	_, stillPresent := engine.table.Get(19000)
	require.True(t, stillPresent)

	engine.ExpireBeacons(start.Add(BeaconExpiry + time.Second))

	_, present := engine.table.Get(19000)
	assert.False(t, present, "a beacon past BeaconExpiry must be removed from the table")

	events := engine.Timeline().Recent(10)
	require.NotEmpty(t, events)
	assert.Equal(t, model.EventBeaconEnded, events[0].Type, "Recent returns newest-first")
}
