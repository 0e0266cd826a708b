package ultrasonic

import (
	"time"

	"github.com/google/uuid"

	"github.com/meshguard/sentinel/pkg/config"
	"github.com/meshguard/sentinel/pkg/dsp"
	"github.com/meshguard/sentinel/pkg/logx"
	"github.com/meshguard/sentinel/pkg/metrics"
	"github.com/meshguard/sentinel/pkg/model"
	"github.com/meshguard/sentinel/pkg/persistence"
	"github.com/meshguard/sentinel/pkg/ratelimit"
	"github.com/meshguard/sentinel/pkg/securebuf"
	"github.com/meshguard/sentinel/pkg/signatures"
	"github.com/meshguard/sentinel/pkg/timeline"
)

// TimelineCapacity is the bounded timeline size for the ultrasonic engine
// (spec.md §3: 100, vs. 200 for cellular).
const TimelineCapacity = 100

// FFTSize is the PCM read size per Goertzel sweep (spec.md §4.8).
const FFTSize = 4096

// SNRGateDB is the minimum amplitude-over-noise-floor margin for a bin to
// qualify (spec.md §4.8, resolving the Open Question in spec.md §9 toward
// the "30 dB above noise" reading).
const SNRGateDB = 30.0

// SampleRateHz is the assumed audio adapter sample rate (spec.md §4.8).
const SampleRateHz = 44100.0

var (
	sweepStartHz = 17500.0
	sweepEndHz   = dsp.NyquistClamp(22000.0, SampleRateHz)
)

// Engine orchestrates ultrasonic scan cycles: Goertzel sweeps over a
// securely staged PCM buffer, noise-floor tracking, per-scan beacon
// aggregation, and the confirmation/expiry lifecycle (spec.md §4.8).
type Engine struct {
	logger   *logx.Logger
	cfg      *config.Manager
	table    *Table
	noise    *dsp.NoiseFloorEstimator
	timeline *timeline.Timeline
	limiter  *ratelimit.Limiter
	sink     persistence.Sink
	reporter model.ErrorReporter

	environment model.EnvironmentalContext
	homeLocation *model.LatLon
	outdoorLikely bool

	anomalies     *model.Stream[model.UltrasonicAnomaly]
	status        *model.Stream[model.BeaconDetection]
	activeBeacons *model.Stream[[]model.BeaconDetection]
}

// New creates an ultrasonic beacon engine.
func New(logger *logx.Logger, cfg *config.Manager, sink persistence.Sink, reporter model.ErrorReporter) *Engine {
	if reporter == nil {
		reporter = model.NoopErrorReporter{}
	}
	snapshot := cfg.Get()
	minInterval := snapshot.AnomalyInterval()
	globalCooldown := snapshot.GlobalCooldown()
	return &Engine{
		logger:        logger,
		cfg:           cfg,
		table:         NewTable(),
		noise:         dsp.NewNoiseFloorEstimator(),
		timeline:      timeline.New(TimelineCapacity),
		limiter:       ratelimit.New(minInterval, globalCooldown),
		sink:          sink,
		reporter:      reporter,
		anomalies:     model.NewStream[model.UltrasonicAnomaly](),
		status:        model.NewStream[model.BeaconDetection](),
		activeBeacons: model.NewStream[[]model.BeaconDetection](),
	}
}

// Timeline exposes the bounded event deque for the ultrasonic_events stream.
func (e *Engine) Timeline() *timeline.Timeline { return e.timeline }

// Anomalies exposes the latest-value broadcast of emitted beacon anomalies.
func (e *Engine) Anomalies() *model.Stream[model.UltrasonicAnomaly] { return e.anomalies }

// Status exposes the latest-value broadcast used by the ultrasonic_status
// stream (most recently aggregated beacon).
func (e *Engine) Status() *model.Stream[model.BeaconDetection] { return e.status }

// ActiveBeacons exposes the active_beacons stream: confirmed beacons only
// (detection_count >= 5), per spec.md §4.8.
func (e *Engine) ActiveBeacons() *model.Stream[[]model.BeaconDetection] { return e.activeBeacons }

// SetEnvironment records the coarse environmental classification used by
// the tracking-likelihood multiplier (spec.md §4.8.2). homeLocation, if
// set, marks where "seen at home" is evaluated against.
func (e *Engine) SetEnvironment(env model.EnvironmentalContext, homeLocation *model.LatLon, outdoorLikely bool) {
	e.environment = env
	e.homeLocation = homeLocation
	e.outdoorLikely = outdoorLikely
}

// scanReading is one qualifying Goertzel bin observed during a scan cycle.
type scanReading struct {
	freqHz      float64
	amplitudeDB float64
}

// ProcessRead runs one FFT_SIZE acquisition through the secure-buffer
// discipline (spec.md §5): seal, sweep under scoped decryption, find
// qualifying bins, update the noise floor, wipe. Returns the qualifying
// readings from this single read.
func (e *Engine) ProcessRead(pcm []int16) ([]scanReading, error) {
	buf, err := securebuf.Seal(pcm)
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()

	var readings []scanReading
	err = buf.With(func(plain []int16) {
		sweep := dsp.Sweep(plain, SampleRateHz, sweepStartHz, sweepEndHz)
		floor := e.noise.Floor()
		for freq, db := range sweep {
			if db-floor > SNRGateDB {
				readings = append(readings, scanReading{freqHz: freq, amplitudeDB: db})
			}
		}
		e.noise.Update(dsp.Sweep(plain, SampleRateHz, dsp.ReferenceBandLowHz, dsp.ReferenceBandHighHz))
	})
	if err != nil {
		return nil, err
	}
	return readings, nil
}

// RunScanCycle processes every read in a single scan cycle, aggregates
// qualifying bins per 100 Hz bucket, and runs the confirmation gate on any
// beacon that reached MinDetectionsToConfirm this cycle (spec.md §4.8).
func (e *Engine) RunScanCycle(reads [][]int16, loc *model.LatLon, now time.Time) ([]model.UltrasonicAnomaly, error) {
	metrics.ScanCyclesTotal.WithLabelValues("ultrasonic").Inc()
	metrics.NoiseFloorDB.Set(e.noise.Floor())

	type bucketAccum struct {
		freqSum float64
		ampSum  float64
		count   int
	}
	buckets := make(map[int64]*bucketAccum)

	for _, pcm := range reads {
		readings, err := e.ProcessRead(pcm)
		if err != nil {
			return nil, err
		}
		for _, r := range readings {
			key := bucketKeyHz(r.freqHz)
			acc, ok := buckets[key]
			if !ok {
				acc = &bucketAccum{}
				buckets[key] = acc
			}
			acc.freqSum += r.freqHz
			acc.ampSum += r.amplitudeDB
			acc.count++
		}
	}

	var anomalies []model.UltrasonicAnomaly
	for key, acc := range buckets {
		if acc.count < QualifyingCountPerScan {
			continue
		}
		repFreq := acc.freqSum / float64(acc.count)
		repAmp := acc.ampSum / float64(acc.count)

		bd, isNew := e.table.Aggregate(key, repFreq, repAmp, loc, e.environment, now)
		e.status.Set(*bd)

		if isNew {
			e.timeline.Append(model.TimelineEvent{
				Timestamp:   now,
				Type:        model.EventInfo,
				Title:       "Potential ultrasonic beacon — awaiting confirmation",
				Description: "An ultrasonic tone was detected; it must repeat several times before classification.",
				FrequencyHz: &bd.FrequencyHz,
			})
			continue
		}

		if bd.DetectionCount == MinDetectionsToConfirm {
			anomaly := e.runConfirmationGate(*bd, now)
			e.table.MarkConfirmed(key)
			if anomaly != nil {
				anomalies = append(anomalies, *anomaly)
			}
		}
	}

	confirmed := e.table.Confirmed()
	e.activeBeacons.Set(confirmed)
	metrics.ActiveBeacons.Set(float64(len(confirmed)))
	return anomalies, nil
}

// runConfirmationGate builds the beacon analysis and applies spec.md
// §4.8's four-part alert gate, emitting an anomaly only if all hold.
func (e *Engine) runConfirmationGate(bd model.BeaconDetection, now time.Time) *model.UltrasonicAnomaly {
	analysis := e.analyze(bd, now)

	durationOK := analysis.DurationMS >= 5000
	trackingOK := analysis.TrackingLikelihood >= 40
	fpOK := analysis.FalsePositiveLikelihood <= 60
	stabilityOK := analysis.FrequencyStable || analysis.MatchedSource != ""

	if durationOK && trackingOK && fpOK && stabilityOK {
		return e.emit(bd, analysis, now)
	}

	metrics.AnomaliesSuppressedTotal.WithLabelValues("ultrasonic", "false_positive_gate").Inc()
	e.timeline.Append(model.TimelineEvent{
		Timestamp:   now,
		Type:        model.EventInfo,
		Title:       "Ultrasonic beacon suppressed (false-positive defense)",
		Description: suppressionReason(durationOK, trackingOK, fpOK, stabilityOK, analysis),
		FrequencyHz: &bd.FrequencyHz,
	})
	return nil
}

func suppressionReason(durationOK, trackingOK, fpOK, stabilityOK bool, a model.BeaconAnalysis) string {
	switch {
	case !durationOK:
		return "Beacon duration under 5 seconds"
	case !trackingOK:
		return "Tracking likelihood below threshold"
	case !fpOK:
		if a.Category == model.CategoryAdvertising {
			return "TV ad beacon frequency detected at multiple locations with inconsistent signal"
		}
		return "False-positive likelihood above threshold"
	default:
		return "Neither frequency-stable nor source-matched"
	}
}

// analyze builds the full BeaconAnalysis for bd (spec.md §4.8.1, §4.8.2,
// §4.8.3).
func (e *Engine) analyze(bd model.BeaconDetection, now time.Time) model.BeaconAnalysis {
	profile := AmplitudeProfileOf(bd.AmplitudeHistory)
	freqStdev, freqStable := FrequencyStability(bd.FrequencyHistory)
	attribution := Attribute(bd.FrequencyHz, profile, freqStable)
	following := AnalyzeFollowing(bd.FrequencyHz, bd.AmplitudeHistory, bd.LocationHistory, freqStable)

	durationMS := bd.LastDetected.Sub(bd.FirstDetected).Milliseconds()
	snr := bd.PeakAmplitudeDB - e.noise.Floor()

	seenAtHome := e.seenAtHome(bd.LocationHistory)
	minutesElapsed := float64(durationMS) / 60000.0

	values := make([]float64, len(bd.AmplitudeHistory))
	for i, s := range bd.AmplitudeHistory {
		values[i] = s.AmplitudeDB
	}
	variance := stdev(values) * stdev(values)

	analysis := model.BeaconAnalysis{
		DurationMS:         durationMS,
		AmplitudeProfile:   profile,
		FrequencyStable:    freqStable,
		FrequencyStdevHz:   freqStdev,
		SNRDb:              snr,
		MatchedSource:      attribution.MatchedSource,
		SourceConfidence:   attribution.SourceConfidence,
		Category:           attribution.Category,
		DistinctLocations:  following.DistinctLocations,
		AmplitudeCV:        following.AmplitudeCV,
		AvgDwellMS:         following.AvgDwellMS,
		FollowingUser:      following.Following,
		SeenAtHome:         seenAtHome,
		PersistenceMinutes: minutesElapsed,
	}

	tracking := TrackingLikelihood(TrackingInput{
		SourceConfidence:  attribution.SourceConfidence,
		FollowingUser:     following.Following,
		SeenAtHome:        seenAtHome,
		DistinctLocations: following.DistinctLocations,
		PersistenceScore:  PersistenceScore(minutesElapsed),
		DurationSeconds:   float64(durationMS) / 1000.0,
		AmplitudeProfile:  profile.String(),
		SNRDb:             snr,
		FrequencyStable:   freqStable,
		ModulationMatched: attribution.ModulationMatched,
		Category:          attribution.Category.String(),
		Environment:       e.environment.BaseMultiplier(),
		IsHome:            seenAtHome,
	})
	analysis.TrackingLikelihood = tracking

	fp := FalsePositiveLikelihood(FalsePositiveInput{
		ConcurrentBeacons: e.table.ActiveCount(),
		DetectionCount:    bd.DetectionCount,
		DurationSeconds:   float64(durationMS) / 1000.0,
		AmplitudeVariance: variance,
		FrequencyStdevHz:  freqStdev,
		MatchedSource:     attribution.MatchedSource != "",
		SourceConfidence:  attribution.SourceConfidence,
		SNRDb:             snr,
		FrequencyStable:   freqStable,
		DistinctLocations: following.DistinctLocations,
		MinutesElapsed:    minutesElapsed,
		AmplitudeProfile:  profile.String(),
		InKnownFPRange:    isKnownFPRange(bd.FrequencyHz),
		TVAdBand:          inBand(bd.FrequencyHz, tvAdBandLowHz, tvAdBandHighHz),
		ACRBand:           inBand(bd.FrequencyHz, acrBandLowHz, acrBandHighHz),
		AmplitudeCV:       following.AmplitudeCV,
		FollowingUser:     following.Following,
		SeenAtHome:        seenAtHome,
		OutdoorLikely:     e.outdoorLikely,
		EVAVASBand:        inBand(bd.FrequencyHz, 17000, 20000),
		ModulationMatched: attribution.ModulationMatched,
	})
	analysis.FalsePositiveLikelihood = fp

	return analysis
}

func (e *Engine) seenAtHome(history []model.LocationSample) bool {
	if e.homeLocation == nil {
		return false
	}
	for _, s := range history {
		if model.HaversineMeters(*e.homeLocation, s.Location) <= FollowingClusterRadiusMeters {
			return true
		}
	}
	return false
}

// knownFPRanges are ultrasonic emitters known to produce false positives
// (spec.md §4.8.3).
var knownFPRanges = [][2]float64{
	{15700, 15800},   // CRT
	{20000, 25000},   // LCD
	{20000, 100000},  // switching power supplies
	{20000, 25000},   // HVAC humidifiers
	{18000, 25000},   // pest deterrents
	{17000, 20000},   // HDDs
	{20000, 40000},   // fluorescent ballasts
	{17000, 20000},   // EV AVAS
	{17500, 22000},   // natural sources
}

func isKnownFPRange(freqHz float64) bool {
	for _, r := range knownFPRanges {
		if freqHz >= r[0] && freqHz <= r[1] {
			return true
		}
	}
	return false
}

func anomalyTypeFor(category model.BeaconCategory) model.UltrasonicAnomalyType {
	switch category {
	case model.CategoryAdvertising:
		return model.AnomalyAdvertisingBeacon
	case model.CategoryTracking:
		return model.AnomalyTrackingBeacon
	case model.CategoryRetail:
		return model.AnomalyRetailBeacon
	case model.CategoryAnalytics:
		return model.AnomalyAnalyticsBeacon
	default:
		return model.AnomalyUnknownBeacon
	}
}

func (e *Engine) emit(bd model.BeaconDetection, analysis model.BeaconAnalysis, now time.Time) *model.UltrasonicAnomaly {
	anomalyType := anomalyTypeFor(analysis.Category)
	if !e.limiter.Allow(string(anomalyType), now) {
		metrics.AnomaliesSuppressedTotal.WithLabelValues("ultrasonic", "cooldown").Inc()
		return nil
	}
	metrics.AnomaliesEmittedTotal.WithLabelValues("ultrasonic", string(anomalyType)).Inc()

	confirmationText, mitigationText := "", ""
	if sig, ok := signatures.FindUltrasonic(bd.FrequencyHz, AttributionToleranceHz); ok {
		confirmationText, mitigationText = sig.ConfirmationText, sig.MitigationText
	}
	description := Describe(anomalyType, analysis.MatchedSource, confirmationText, mitigationText)

	anomaly := model.UltrasonicAnomaly{
		ID:                  uuid.NewString(),
		Timestamp:           now,
		Type:                anomalyType,
		Threat:              model.SeverityFromScore(analysis.TrackingLikelihood),
		Confidence:          analysis.TrackingLikelihood,
		ContributingFactors: factorsFor(analysis),
		Description:         description,
		FrequencyHz:         bd.FrequencyHz,
		Analysis:            analysis,
	}
	if len(bd.LocationHistory) > 0 {
		loc := bd.LocationHistory[len(bd.LocationHistory)-1].Location
		anomaly.Location = &loc
	}

	e.limiter.Record(string(anomalyType), now)
	e.anomalies.Set(anomaly)

	threat := anomaly.Threat
	descriptionText := actionableDescriptionText(description, joinFactors(anomaly.ContributingFactors))
	e.timeline.Append(model.TimelineEvent{
		Timestamp:   now,
		Type:        model.EventAnomaly,
		Title:       string(anomalyType),
		Description: descriptionText,
		FrequencyHz: &bd.FrequencyHz,
		Threat:      &threat,
		Location:    anomaly.Location,
	})

	if e.sink != nil {
		entity := persistence.CellularEventEntity{
			Timestamp:   now.Unix(),
			Type:        string(anomalyType),
			Title:       string(anomalyType),
			Description: descriptionText,
		}
		if err := e.sink.InsertEvent(entity); err != nil {
			metrics.PersistenceErrorsTotal.WithLabelValues("insert_event").Inc()
			e.logger.Warn("persist ultrasonic event failed", "error", err.Error())
		}
		_ = e.sink.TrimEvents(TimelineCapacity)
	}

	return &anomaly
}

func factorsFor(a model.BeaconAnalysis) []string {
	var out []string
	if a.MatchedSource != "" {
		out = append(out, "Matched known source: "+a.MatchedSource)
	}
	if a.FollowingUser {
		out = append(out, "Beacon observed across multiple distinct locations (following)")
	}
	if a.FrequencyStable {
		out = append(out, "Frequency stable across detections")
	}
	out = append(out, "Category: "+a.Category.String(), "Amplitude profile: "+a.AmplitudeProfile.String())
	return out
}

func joinFactors(factors []string) string {
	out := ""
	for i, f := range factors {
		if i > 0 {
			out += "; "
		}
		out += f
	}
	return out
}

// ExpireBeacons removes every beacon past BeaconExpiry and logs a
// BEACON_ENDED event for each (spec.md §3).
func (e *Engine) ExpireBeacons(now time.Time) {
	for _, bd := range e.table.ExpireStale(now) {
		e.timeline.Append(model.TimelineEvent{
			Timestamp:   now,
			Type:        model.EventBeaconEnded,
			Title:       "Ultrasonic beacon ended",
			Description: "No further detections within the expiry window.",
			FrequencyHz: &bd.FrequencyHz,
		})
	}
	e.activeBeacons.Set(e.table.Confirmed())
}

// ToDetection converts an emitted beacon anomaly into the boundary record
// handed to storage/UI, mirroring cellular.ToDetection (spec.md §3).
func ToDetection(a model.UltrasonicAnomaly) model.Detection {
	return model.Detection{
		Protocol:            model.ProtocolAudio,
		Method:              model.MethodUltrasonicBeacon,
		DeviceType:          string(a.Type),
		SignalStrength:      int(a.FrequencyHz),
		Threat:              a.Threat,
		ThreatScore:         a.Confidence,
		ContributingFactors: a.ContributingFactors,
		Timestamp:           a.Timestamp,
	}
}
