package cellular

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

// fakeTrust is a minimal trustModel stand-in: every cell is unknown
// (TrustScore 0) and every location is unfamiliar, unless explicitly
// marked otherwise.
type fakeTrust struct {
	familiar bool
	scores   map[int64]int
}

func newFakeTrust() *fakeTrust {
	return &fakeTrust{scores: make(map[int64]int)}
}

func (f *fakeTrust) Observe(cellID int64, operator, networkType string, loc *model.LatLon, now time.Time) {
}

func (f *fakeTrust) TrustScore(cellID int64) int { return f.scores[cellID] }

func (f *fakeTrust) IsInFamiliarArea(lat, lon float64) bool { return f.familiar }

func newTestEngine(t *testing.T, trust *fakeTrust) *Engine {
	t.Helper()
	cfgManager, err := config.Load("")
	require.NoError(t, err)
	logger := logx.NewLogger("error", "test")
	return New(logger, cfgManager, trust, persistence.NoopSink{}, nil)
}

func radioCell(ci int64, mcc, mnc string, signalDBM int, tech RadioTechnology) RadioCell {
	return RadioCell{
		Registered: true,
		Tech:       tech,
		CI:         &ci,
		MCC:        &mcc,
		MNC:        &mnc,
		SignalDBM:  signalDBM,
	}
}

func TestEngineFirstSnapshotNeverEmits(t *testing.T) {
	engine := newTestEngine(t, newFakeTrust())
	now := time.Now()

	anomaly, err := engine.OnCellInfo([]RadioCell{radioCell(1, "310", "410", -85, TechLTE)}, nil, now)

	require.NoError(t, err)
	assert.Nil(t, anomaly, "a lone first observation has nothing to compare against")
}

func TestEngineSuspiciousMCCMNCEmitsCritical(t *testing.T) {
	engine := newTestEngine(t, newFakeTrust())
	now := time.Now()

	// 001/01 is the reserved GSM test network (spec.md's suspicious MCC/MNC
	// table), so even a first observation short-circuits straight to
	// SUSPICIOUS_NETWORK.
	anomaly, err := engine.OnCellInfo([]RadioCell{radioCell(1, "001", "01", -85, TechLTE)}, nil, now)

	require.NoError(t, err)
	require.NotNil(t, anomaly)
	assert.Equal(t, model.AnomalySuspiciousNetwork, anomaly.Type)
	assert.Equal(t, model.ThreatCritical, anomaly.Threat)
}

func TestEngineEncryptionDowngradeShortCircuitsScoring(t *testing.T) {
	engine := newTestEngine(t, newFakeTrust())
	now := time.Now()

	_, err := engine.OnCellInfo([]RadioCell{radioCell(1, "310", "260", -90, TechLTE)}, nil, now)
	require.NoError(t, err)

	anomaly, err := engine.OnCellInfo([]RadioCell{radioCell(2, "310", "260", -88, TechGSM)}, nil, now.Add(2*time.Second))
	require.NoError(t, err)
	require.NotNil(t, anomaly, "a 4G->2G downgrade with weak encryption must be reported")
	assert.Equal(t, model.AnomalyEncryptionDowngrade, anomaly.Type)
}

func TestEngineQuietSteadyStateStaysSilent(t *testing.T) {
	trust := newFakeTrust()
	trust.familiar = true
	engine := newTestEngine(t, trust)
	now := time.Now()

	cell := radioCell(42, "310", "410", -90, TechLTE)
	trust.scores[42] = 80

	_, err := engine.OnCellInfo([]RadioCell{cell}, nil, now)
	require.NoError(t, err)

	anomaly, err := engine.OnCellInfo([]RadioCell{cell}, nil, now.Add(5*time.Second))
	require.NoError(t, err)
	assert.Nil(t, anomaly, "an unchanged, trusted, familiar cell should never trip the reporting gate")
}

func TestEngineLogsDegradingSignalTrend(t *testing.T) {
	trust := newFakeTrust()
	trust.familiar = true
	trust.scores[7] = 90
	engine := newTestEngine(t, trust)

	cellID := int64(7)
	mcc, mnc := "310", "410"
	now := time.Now()

	// A steadily weakening signal on an unchanged, trusted, familiar cell
	// should trend as "degrading" without tripping any anomaly gate.
	signal := -70
	for i := 0; i < SignalTrendWindow+1; i++ {
		snap := model.CellSnapshot{
			Timestamp:   now.Add(time.Duration(i) * 10 * time.Second),
			CellID:      &cellID,
			MCC:         &mcc,
			MNC:         &mnc,
			SignalDBM:   signal,
			NetworkType: "LTE",
			Generation:  model.Gen4G,
		}
		_, err := engine.ProcessSnapshot(snap, snap.Timestamp)
		require.NoError(t, err)
		signal -= 4
	}

	found := false
	for _, ev := range engine.Timeline().Recent(0) {
		if ev.Title == "Signal strength trending downward" {
			found = true
			break
		}
	}
	assert.True(t, found, "a sustained signal decline should surface as a timeline note")
}

func TestEngineGlobalCooldownSuppressesRapidRepeats(t *testing.T) {
	engine := newTestEngine(t, newFakeTrust())
	now := time.Now()

	// The reserved test MCC/MNC trips SUSPICIOUS_NETWORK on the very first
	// observation, recording an emission and starting the global cooldown.
	first, err := engine.OnCellInfo([]RadioCell{radioCell(1, "001", "01", -90, TechLTE)}, nil, now)
	require.NoError(t, err)
	require.NotNil(t, first)

	// A clear 4G->2G downgrade one millisecond later would normally be
	// reported, but the global cooldown (half the anomaly interval) has
	// not yet elapsed, so evaluate's step 1 must short-circuit to nil.
	anomaly, err := engine.OnCellInfo([]RadioCell{radioCell(2, "310", "260", -40, TechGSM)}, nil, now.Add(time.Millisecond))
	require.NoError(t, err)
	assert.Nil(t, anomaly, "rapid repeats within the global cooldown window must be suppressed")
}
