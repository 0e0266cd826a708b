package cellular

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meshguard/sentinel/pkg/config"
	"github.com/meshguard/sentinel/pkg/logx"
	"github.com/meshguard/sentinel/pkg/metrics"
	"github.com/meshguard/sentinel/pkg/model"
	"github.com/meshguard/sentinel/pkg/persistence"
	"github.com/meshguard/sentinel/pkg/ratelimit"
	"github.com/meshguard/sentinel/pkg/signatures"
	"github.com/meshguard/sentinel/pkg/timeline"
	"github.com/meshguard/sentinel/pkg/trend"
)

// SignalTrendWindow is the number of most recent snapshots fed into the
// signal-strength trend fit (spec.md §9's ambient analytics layer).
const SignalTrendWindow = 6

// SignalTrendConfidence is the minimum R^2 required before a degrading
// trend is worth surfacing on the timeline.
const SignalTrendConfidence = 0.5

// TimelineCapacity is the bounded timeline size for the cellular engine
// (spec.md §3).
const TimelineCapacity = 200

// ReportingThreshold is the minimum imsi_score at which an anomaly
// surfaces (spec.md §4.7 reporting gate).
const ReportingThreshold = 30

// InfoLogThreshold is the minimum imsi_score (below ReportingThreshold) at
// which a below-gate INFO timeline entry is still logged.
const InfoLogThreshold = 15

// SignalSpikeDeltaDBM and SignalSpikeWindow define the "suspicious signal
// jump" heuristic (spec.md §4.7 step 6).
const (
	SignalSpikeDeltaDBM = 25
	SignalSpikeWindow   = 5 * time.Second
)

// aggressiveHandoffCarrierMNCs are US MNCs (under MCC 310) known for
// aggressive 5G<->5G NSA/SA handoffs within the T-Mobile/Metro/Sprint
// family (spec.md §4.7 step 4).
var aggressiveHandoffCarrierMNCs = map[string]bool{
	"260": true, // T-Mobile
	"490": true, // Metro by T-Mobile
	"120": true, // Sprint (legacy, merged into T-Mobile)
	"870": true, // Sprint (legacy secondary)
}

func isAggressiveHandoffCarrier(mcc, mnc string) bool {
	return mcc == "310" && aggressiveHandoffCarrierMNCs[mnc]
}

// Engine orchestrates per-snapshot cellular anomaly analysis (spec.md §4.7).
// Each table it owns (history, trust, downgrade, stationary) is guarded by
// its own lock; the rate limiter's anomaly-time map has a separate lock
// again, per spec.md §5.
type Engine struct {
	logger *logx.Logger
	cfg    *config.Manager

	history    *History
	trust      trustModel
	stationary *StationaryTracker
	downgrade  *DowngradeTracker
	timeline   *timeline.Timeline
	limiter    *ratelimit.Limiter
	sink       persistence.Sink
	reporter   model.ErrorReporter

	mu               sync.Mutex
	previous         *model.CellSnapshot
	lastLocation     *model.LatLon
	lastLocationTime time.Time
	lastDisplayOverride DisplayOverride

	anomalies  *model.Stream[model.CellularAnomaly]
	cellStatus *model.Stream[model.CellSnapshot]
}

// trustModel is the narrow surface of pkg/trust.Model the engine needs;
// declared locally so the engine package does not import pkg/trust
// directly into its exported API (kept as a thin indirection for tests).
type trustModel interface {
	Observe(cellID int64, operator, networkType string, loc *model.LatLon, now time.Time)
	TrustScore(cellID int64) int
	IsInFamiliarArea(lat, lon float64) bool
}

// New creates a cellular anomaly engine.
func New(logger *logx.Logger, cfg *config.Manager, trust trustModel, sink persistence.Sink, reporter model.ErrorReporter) *Engine {
	if reporter == nil {
		reporter = model.NoopErrorReporter{}
	}
	snapshot := cfg.Get()
	minInterval := snapshot.AnomalyInterval()
	globalCooldown := snapshot.GlobalCooldown()
	return &Engine{
		logger:     logger,
		cfg:        cfg,
		history:    NewHistory(),
		trust:      trust,
		stationary: NewStationaryTracker(),
		downgrade:  NewDowngradeTracker(),
		timeline:   timeline.New(TimelineCapacity),
		limiter:    ratelimit.New(minInterval, globalCooldown),
		sink:       sink,
		reporter:   reporter,
		anomalies:  model.NewStream[model.CellularAnomaly](),
		cellStatus: model.NewStream[model.CellSnapshot](),
	}
}

// Timeline exposes the bounded event deque for the cellular_events stream.
func (e *Engine) Timeline() *timeline.Timeline { return e.timeline }

// Anomalies exposes the latest-value broadcast of emitted anomalies.
func (e *Engine) Anomalies() *model.Stream[model.CellularAnomaly] { return e.anomalies }

// CellStatus exposes the latest-value broadcast of the serving snapshot.
func (e *Engine) CellStatus() *model.Stream[model.CellSnapshot] { return e.cellStatus }

// UpdateLocation records the device's coarse location (spec.md §6).
func (e *Engine) UpdateLocation(loc model.LatLon, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastLocation = &loc
	e.lastLocationTime = at
}

func (e *Engine) hasRecentLocation(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastLocation == nil {
		return false
	}
	return now.Sub(e.lastLocationTime) <= LocationStaleness
}

// OnDisplayOverride records the telephony adapter's display hint (spec.md
// §6); it affects only CellStatus reporting, never anomaly analysis.
func (e *Engine) OnDisplayOverride(override DisplayOverride) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastDisplayOverride = override
}

// currentDisplayOverride returns the most recently recorded display hint.
func (e *Engine) currentDisplayOverride() DisplayOverride {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastDisplayOverride
}

// OnCellInfo is the telephony adapter's inbound callback: select the
// serving cell, build a snapshot, and run the full decision ladder
// (spec.md §4.7).
func (e *Engine) OnCellInfo(cells []RadioCell, loc *model.LatLon, now time.Time) (*model.CellularAnomaly, error) {
	cell, ok := SelectServingCell(cells)
	if !ok {
		return nil, nil
	}
	if loc == nil {
		e.mu.Lock()
		loc = e.lastLocation
		e.mu.Unlock()
	} else {
		e.UpdateLocation(*loc, now)
	}

	snap := BuildSnapshot(cell, loc, now)
	return e.ProcessSnapshot(snap, now)
}

// ProcessSnapshot runs the decision ladder for one already-built snapshot.
// Exposed directly for tests that construct CellSnapshot values by hand.
func (e *Engine) ProcessSnapshot(snap model.CellSnapshot, now time.Time) (*model.CellularAnomaly, error) {
	metrics.ScanCyclesTotal.WithLabelValues("cellular").Inc()
	if snap.CellID != nil {
		metrics.TrustScoreCurrent.Set(float64(e.trust.TrustScore(*snap.CellID)))
	}

	// spec.md §6: the display override only changes what is reported on
	// cell_status, never the generation the decision ladder scores against.
	snap.EffectiveDisplayGeneration = EffectiveDisplayGeneration(snap.Generation, e.currentDisplayOverride())

	e.history.Record(snap)
	e.cellStatus.Set(snap)
	e.logSignalTrend(now)

	e.mu.Lock()
	previous := e.previous
	e.previous = &snap
	e.mu.Unlock()

	if previous == nil {
		// First observation: nothing to compare against except the
		// suspicious-network check, which does not need a previous
		// snapshot.
		return e.evaluateFirstSnapshot(snap, now)
	}

	return e.evaluate(*previous, snap, now)
}

// logSignalTrend fits a trend line over the most recent serving-cell signal
// readings and logs an INFO timeline note on a sustained degrading trend.
// This is an ambient analytics note, not a scoring input: it never affects
// imsi_score or the reporting gate.
func (e *Engine) logSignalTrend(now time.Time) {
	snaps := e.history.Snapshot()
	if len(snaps) < SignalTrendWindow {
		return
	}
	recent := snaps[len(snaps)-SignalTrendWindow:]
	samples := make([]trend.Sample, len(recent))
	for i, s := range recent {
		samples[i] = trend.Sample{Timestamp: s.Timestamp, Value: float64(s.SignalDBM)}
	}

	result, err := trend.Fit(samples, true)
	if err != nil || result.Direction != "degrading" || result.Confidence < SignalTrendConfidence {
		return
	}

	e.timeline.Append(model.TimelineEvent{
		Timestamp:   now,
		Type:        model.EventInfo,
		Title:       "Signal strength trending downward",
		Description: "Recent serving-cell signal readings show a sustained " + result.Magnitude + " degrading trend.",
	})
}

func (e *Engine) evaluateFirstSnapshot(snap model.CellSnapshot, now time.Time) (*model.CellularAnomaly, error) {
	if snap.MCC != nil && snap.MNC != nil && signatures.IsSuspiciousMCCMNC(*snap.MCC, *snap.MNC) {
		return e.emitSuspiciousNetwork(snap, now)
	}
	if snap.CellID != nil {
		e.trust.Observe(*snap.CellID, "", snap.NetworkType, snap.Location, now)
	}
	e.downgrade.Observe(snap.Generation, now)
	return nil, nil
}

// evaluate runs the full ladder with both snapshots known.
func (e *Engine) evaluate(previous, current model.CellSnapshot, now time.Time) (*model.CellularAnomaly, error) {
	// Step 1: global cooldown.
	if !e.limiter.AllowGlobal(now) {
		return nil, nil
	}

	// Step 3a: suspicious MCC/MNC short-circuits everything else,
	// including downgrade analysis (spec.md scenario 3).
	if current.MCC != nil && current.MNC != nil && signatures.IsSuspiciousMCCMNC(*current.MCC, *current.MNC) {
		return e.emitSuspiciousNetwork(current, now)
	}

	e.downgrade.Observe(current.Generation, now)
	chain := e.downgrade.RecentChain()

	var trustScore int
	if current.CellID != nil {
		trustScore = e.trust.TrustScore(*current.CellID)
	}

	movement := AnalyzeMovement(previous.Location, current.Location, current.Timestamp.Sub(previous.Timestamp), e.hasRecentLocation(now))

	signalSpike := current.Timestamp.Sub(previous.Timestamp) <= SignalSpikeWindow &&
		(current.SignalDBM-previous.SignalDBM) > SignalSpikeDeltaDBM

	encryptionWeak := isWeakEncryption(current.Generation)
	downgraded := rank(current.Generation) < rank(previous.Generation)

	untrusted := trustScore < 30

	familiar := false
	if current.Location != nil {
		familiar = e.trust.IsInFamiliarArea(current.Location.Lat, current.Location.Lon)
	}

	suspiciousShape := current.CellID != nil && signatures.IsSuspiciousCellIDPattern(*current.CellID)

	mcc, mnc := "", ""
	if current.MCC != nil {
		mcc = *current.MCC
	}
	if current.MNC != nil {
		mnc = *current.MNC
	}

	operatorChanged := current.MCC != nil && previous.MCC != nil && (*current.MCC != *previous.MCC || (current.MNC != nil && previous.MNC != nil && *current.MNC != *previous.MNC))

	sameCell := sameCellID(previous.CellID, current.CellID)
	lacTacChangedNoCellChange := sameCell && (nonzeroChanged(previous.LAC, current.LAC) || nonzeroChanged(previous.TAC, current.TAC))

	analysis := model.CellularAnalysis{
		DowngradeChain:         chain,
		CurrentGeneration:      current.Generation,
		PreviousGeneration:     previous.Generation,
		EncryptionWeakOrNone:   encryptionWeak,
		SignalDBM:              current.SignalDBM,
		SignalSpike:            signalSpike,
		DowngradeWithSpike:     downgraded && signalSpike,
		DowngradeWithUntrusted: downgraded && untrusted,
		ImpossibleSpeed:        movement.ImpossibleJump,
		Movement:               movement,
		TrustScore:             trustScore,
		LACTACChangedNoCell:    lacTacChangedNoCellChange,
		OperatorChanged:        operatorChanged,
		GenerationChanged:      current.Generation != previous.Generation,
		LAC:                    current.LAC,
		TAC:                    current.TAC,
		SuspiciousCellIDShape:  suspiciousShape,
		MCC:                    mcc,
		MNC:                    mnc,
		UnfamiliarArea:         !familiar,
	}

	// Step 3b: encryption downgrade short-circuit.
	if downgraded && encryptionWeak {
		return e.emitEncryptionDowngrade(current, analysis, now)
	}

	imsiResult := ScoreIMSICatcher(analysis)
	total := imsiResult.Score
	factors := append([]ScoreFactor(nil), imsiResult.Factors...)

	// Net point contribution of each ladder step, tracked separately from
	// the running total so the reporting gate can name the specific
	// CellularAnomalyType the dominant factor corresponds to (spec.md §4.7
	// enumerates SIGNAL_SPIKE, UNKNOWN_CELL_IN_FAMILIAR_AREA, LAC_TAC_CHANGE,
	// and OPERATOR_CHANGE alongside the general STATIONARY_CELL_CHANGE and
	// RAPID_CELL_SWITCHING outcomes).
	var stationaryPts, rapidPts, signalSpikePts, unknownFamiliarPts, lacTacPts, operatorPts int

	cellChanged := !sameCellID(previous.CellID, current.CellID)
	if cellChanged {
		e.recordCellChangeEvent(current, now)

		stationary := movement.Class == model.MovementStationary
		if stationary && previous.CellID != nil && current.CellID != nil {
			e.stationary.Track(*previous.CellID, *current.CellID, now)
			pattern := e.stationary.AnalyzeStationaryPattern(*previous.CellID, *current.CellID, now)
			analysis.RecentChangesCount = pattern.RecentChangesCount
			analysis.Oscillating = pattern.IsOscillating

			switch {
			case pattern.IsQuickReturn:
				e.timeline.Append(model.TimelineEvent{
					Timestamp:   now,
					Type:        model.EventInfo,
					Title:       "Note: Quick return to original cell detected (likely network optimization)",
					Description: "The device returned to a previously seen cell within 60 seconds, consistent with routine network optimization rather than a threat.",
				})
			case isAggressiveHandoffCarrier(mcc, mnc) &&
				previous.Generation == model.Gen5G && current.Generation == model.Gen5G &&
				!operatorChanged && total < 40:
				// Suppressed: routine 5G<->5G handoff on a carrier known
				// for aggressive NSA/SA reselection, and the running
				// score is not otherwise elevated.
			default:
				stationaryPts += 15
				factors = append(factors, ScoreFactor{Points: 15, Reason: "Cell changed while device stationary"})
				if pattern.RecentChangesCount >= 3 {
					stationaryPts += 25
					factors = append(factors, ScoreFactor{Points: 25, Reason: "Three or more cell changes in the last 5 minutes"})
				} else if pattern.RecentChangesCount >= 2 {
					stationaryPts += 10
					factors = append(factors, ScoreFactor{Points: 10, Reason: "Multiple recent cell changes"})
				}
				if pattern.IsOscillating {
					stationaryPts -= 10
					factors = append(factors, ScoreFactor{Points: -10, Reason: "Oscillating between a small set of cells"})
				}
				if trustScore == 0 && !familiar {
					stationaryPts += 15
					factors = append(factors, ScoreFactor{Points: 15, Reason: "Unknown cell in an unfamiliar area"})
				}
				if !operatorChanged && previous.Generation == model.Gen5G && current.Generation == model.Gen5G {
					stationaryPts -= 5
					factors = append(factors, ScoreFactor{Points: -5, Reason: "Same-carrier 5G handoff"})
				}
				if movement.ImpossibleJump {
					stationaryPts += 25
					factors = append(factors, ScoreFactor{Points: 25, Reason: "Impossible travel speed between readings"})
				}
				total += stationaryPts
			}
		}
	}

	// Step 5: rapid switching.
	recentChanges := RecentCellChanges(e.history.Snapshot(), time.Minute, now)
	stationaryNow := movement.Class == model.MovementStationary
	threshold := RapidSwitchThresholdPerMin(!stationaryNow)
	if recentChanges > threshold {
		rapidPts += 20
		factors = append(factors, ScoreFactor{Points: 20, Reason: "Rapid cell switching detected"})
		if stationaryNow {
			rapidPts += 25
			factors = append(factors, ScoreFactor{Points: 25, Reason: "Rapid switching while device is stationary"})
		}
		total += rapidPts
	}

	// Step 6: signal spike.
	if signalSpike {
		signalSpikePts += 15
		factors = append(factors, ScoreFactor{Points: 15, Reason: "Sudden signal strength increase"})
		if cellChanged {
			signalSpikePts += 15
			factors = append(factors, ScoreFactor{Points: 15, Reason: "Signal spike combined with a cell change"})
		}
		total += signalSpikePts
	}

	// Step 7: unknown cell in a familiar area.
	if trustScore == 0 && familiar {
		unknownFamiliarPts += 25
		factors = append(factors, ScoreFactor{Points: 25, Reason: "Unrecognized cell reported in an otherwise familiar area"})
		total += unknownFamiliarPts
	}

	// Step 8: LAC/TAC changed while cell_id constant, both sides nonzero.
	if lacTacChangedNoCellChange {
		lacTacPts += 20
		factors = append(factors, ScoreFactor{Points: 20, Reason: "Location/tracking area code changed without a cell change"})
		total += lacTacPts
	}

	// Step 9: operator changed.
	if operatorChanged {
		operatorPts += 20
		factors = append(factors, ScoreFactor{Points: 20, Reason: "Network operator changed"})
		total += operatorPts
	}

	total = clampScore(total)

	// Classify by whichever ladder step contributed the most points, so the
	// emitted anomaly names the dominant signal instead of always reporting
	// the generic stationary-change type (spec.md §4.7's decision ladder).
	anomalyType := model.AnomalyStationaryChange
	dominant := stationaryPts
	if rapidPts > dominant {
		anomalyType, dominant = model.AnomalyRapidCellSwitching, rapidPts
	}
	if signalSpikePts > dominant {
		anomalyType, dominant = model.AnomalySignalSpike, signalSpikePts
	}
	if unknownFamiliarPts > dominant {
		anomalyType, dominant = model.AnomalyUnknownCellFamiliar, unknownFamiliarPts
	}
	if lacTacPts > dominant {
		anomalyType, dominant = model.AnomalyLACTACChange, lacTacPts
	}
	if operatorPts > dominant {
		anomalyType = model.AnomalyOperatorChange
	}

	if current.CellID != nil {
		e.trust.Observe(*current.CellID, mcc+"/"+mnc, current.NetworkType, current.Location, now)
	}

	return e.gate(current, analysis, anomalyType, total, factors, now)
}

// gate applies the reporting threshold from spec.md §4.7: emit if
// imsi_score >= 30; below that but >= 15 with factors present, log INFO
// instead; otherwise stay silent.
func (e *Engine) gate(snap model.CellSnapshot, analysis model.CellularAnalysis, anomalyType model.CellularAnomalyType, score int, factors []ScoreFactor, now time.Time) (*model.CellularAnomaly, error) {
	if score >= ReportingThreshold {
		if !e.limiter.Allow(string(anomalyType), now) {
			metrics.AnomaliesSuppressedTotal.WithLabelValues("cellular", "cooldown").Inc()
			return nil, nil
		}
		anomaly := e.buildAnomaly(snap, analysis, anomalyType, score, factors, now)
		e.publish(anomaly, now)
		return &anomaly, nil
	}

	if score >= InfoLogThreshold && len(factors) > 0 {
		e.timeline.Append(model.TimelineEvent{
			Timestamp:   now,
			Type:        model.EventInfo,
			Title:       "Below-threshold cellular signal observed",
			Description: reasonsToText(factors),
			CellID:      snap.CellID,
		})
	}
	return nil, nil
}

func (e *Engine) buildAnomaly(snap model.CellSnapshot, analysis model.CellularAnalysis, anomalyType model.CellularAnomalyType, score int, factors []ScoreFactor, now time.Time) model.CellularAnomaly {
	factorList := reasonsToList(factors)
	return model.CellularAnomaly{
		ID:                  uuid.NewString(),
		Timestamp:           now,
		Type:                anomalyType,
		Threat:              model.SeverityFromScore(score),
		Confidence:          score,
		ContributingFactors: factorList,
		Description:         Describe(anomalyType, factorList),
		Location:            snap.Location,
		Snapshot:            snap,
		Analysis:            analysis,
	}
}

func (e *Engine) emitSuspiciousNetwork(snap model.CellSnapshot, now time.Time) (*model.CellularAnomaly, error) {
	if !e.limiter.Allow(string(model.AnomalySuspiciousNetwork), now) {
		return nil, nil
	}
	analysis := model.CellularAnalysis{CurrentGeneration: snap.Generation}
	anomaly := e.buildAnomaly(snap, analysis, model.AnomalySuspiciousNetwork, 100, []ScoreFactor{
		{Points: 100, Reason: "Test or reserved mobile network code (MCC/MNC) detected"},
	}, now)
	anomaly.Threat = model.ThreatCritical
	e.publish(anomaly, now)
	return &anomaly, nil
}

func (e *Engine) emitEncryptionDowngrade(snap model.CellSnapshot, analysis model.CellularAnalysis, now time.Time) (*model.CellularAnomaly, error) {
	result := ScoreIMSICatcher(analysis)
	if !e.limiter.Allow(string(model.AnomalyEncryptionDowngrade), now) {
		return nil, nil
	}

	factors := append([]ScoreFactor(nil), result.Factors...)
	factors = append(factors, ScoreFactor{Reason: "Encryption downgrade chain: " + chainString(analysis.DowngradeChain)})
	if analysis.SignalSpike {
		factors = append(factors, ScoreFactor{Reason: "Signal spike accompanied the downgrade"})
	}
	if analysis.TrustScore < 30 {
		factors = append(factors, ScoreFactor{Reason: "Downgrade occurred on a low-trust tower"})
	}

	anomaly := e.buildAnomaly(snap, analysis, model.AnomalyEncryptionDowngrade, result.Score, factors, now)
	anomaly.Threat = encryptionDowngradeSeverity(result.Score)
	e.publish(anomaly, now)
	return &anomaly, nil
}

// encryptionDowngradeSeverity is the branch-specific mapping from spec.md
// §4.7 step 3: >=70 CRITICAL, >=50 HIGH, else MEDIUM.
func encryptionDowngradeSeverity(score int) model.ThreatLevel {
	switch {
	case score >= 70:
		return model.ThreatCritical
	case score >= 50:
		return model.ThreatHigh
	default:
		return model.ThreatMedium
	}
}

func (e *Engine) recordCellChangeEvent(snap model.CellSnapshot, now time.Time) {
	e.timeline.Append(model.TimelineEvent{
		Timestamp:   now,
		Type:        model.EventCellChange,
		Title:       "Serving cell changed",
		Description: "The device attached to a different cell.",
		CellID:      snap.CellID,
		Location:    snap.Location,
	})
}

func (e *Engine) publish(anomaly model.CellularAnomaly, now time.Time) {
	metrics.AnomaliesEmittedTotal.WithLabelValues("cellular", string(anomaly.Type)).Inc()
	e.limiter.Record(string(anomaly.Type), now)
	e.anomalies.Set(anomaly)

	threat := anomaly.Threat
	description := actionableDescriptionText(anomaly.Description, reasonsToText(scoreFactorsFromStrings(anomaly.ContributingFactors)))
	e.timeline.Append(model.TimelineEvent{
		Timestamp:   anomaly.Timestamp,
		Type:        model.EventAnomaly,
		Title:       string(anomaly.Type),
		Description: description,
		CellID:      anomaly.Snapshot.CellID,
		Threat:      &threat,
		Location:    anomaly.Location,
	})

	if e.sink == nil {
		return
	}
	entity := persistence.CellularEventEntity{
		Timestamp:   anomaly.Timestamp.Unix(),
		Type:        string(anomaly.Type),
		Title:       string(anomaly.Type),
		Description: description,
	}
	if anomaly.Snapshot.CellID != nil {
		entity.CellID = cellIDString(*anomaly.Snapshot.CellID)
	}
	if err := e.sink.InsertEvent(entity); err != nil {
		metrics.PersistenceErrorsTotal.WithLabelValues("insert_event").Inc()
		e.logger.Warn("persist cellular event failed", "error", err.Error())
	}
	_ = e.sink.TrimEvents(TimelineCapacity)
}

// ToDetection converts an enrichment-level anomaly into the boundary
// record handed to storage/UI (spec.md §3).
func ToDetection(a model.CellularAnomaly) model.Detection {
	return model.Detection{
		Protocol:            model.ProtocolCellular,
		Method:              model.MethodIMSICatcherScore,
		DeviceType:          a.Snapshot.NetworkType,
		SignalStrength:      a.Snapshot.SignalDBM,
		Threat:              a.Threat,
		ThreatScore:         a.Confidence,
		ContributingFactors: a.ContributingFactors,
		Timestamp:           a.Timestamp,
	}
}

func isWeakEncryption(g model.NetworkGeneration) bool {
	return g == model.Gen2G || g == model.GenUnknown
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func sameCellID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func nonzeroChanged(a, b *int32) bool {
	if a == nil || b == nil {
		return false
	}
	if *a == 0 || *b == 0 {
		return false
	}
	return *a != *b
}

func chainString(chain []model.NetworkGeneration) string {
	out := ""
	for i, g := range chain {
		if i > 0 {
			out += "->"
		}
		out += g.String()
	}
	return out
}

func reasonsToList(factors []ScoreFactor) []string {
	out := make([]string, 0, len(factors))
	for _, f := range factors {
		out = append(out, f.Reason)
	}
	return out
}

func reasonsToText(factors []ScoreFactor) string {
	text := ""
	for i, f := range factors {
		if i > 0 {
			text += "; "
		}
		text += f.Reason
	}
	return text
}

func scoreFactorsFromStrings(reasons []string) []ScoreFactor {
	out := make([]ScoreFactor, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, ScoreFactor{Reason: r})
	}
	return out
}

func cellIDString(id int64) string {
	return strconv.FormatInt(id, 10)
}
