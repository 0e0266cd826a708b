// Package metrics exposes sentineld's Prometheus instrumentation: scan
// cycle counts, anomalies emitted per engine/type, rate-limit suppressions,
// and live gauges for the ultrasonic noise floor and active beacon count.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScanCyclesTotal counts completed scan cycles, labeled by engine
	// ("cellular" or "ultrasonic").
	ScanCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentineld_scan_cycles_total",
		Help: "Total number of completed detection-engine scan cycles.",
	}, []string{"engine"})

	// AnomaliesEmittedTotal counts anomalies that passed the reporting
	// gate and were published, labeled by engine and anomaly type.
	AnomaliesEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentineld_anomalies_emitted_total",
		Help: "Total number of anomalies emitted after passing the reporting gate.",
	}, []string{"engine", "type"})

	// AnomaliesSuppressedTotal counts anomalies that were computed but
	// withheld, labeled by engine and the reason ("cooldown" or
	// "false_positive_gate").
	AnomaliesSuppressedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentineld_anomalies_suppressed_total",
		Help: "Total number of anomalies computed but not emitted.",
	}, []string{"engine", "reason"})

	// ActiveBeacons is the current count of confirmed ultrasonic beacons
	// (detection_count >= 5).
	ActiveBeacons = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sentineld_active_beacons",
		Help: "Current number of confirmed ultrasonic tracking beacons.",
	})

	// NoiseFloorDB is the ultrasonic engine's current EMA noise-floor
	// estimate in dB.
	NoiseFloorDB = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sentineld_noise_floor_db",
		Help: "Current ultrasonic noise-floor estimate, in dB.",
	})

	// TrustScoreCurrent is the trust score of the serving cell, 0..100.
	TrustScoreCurrent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sentineld_trust_score_current",
		Help: "Trust score of the currently serving cell, 0-100.",
	})

	// PersistenceErrorsTotal counts failed Sink operations, labeled by the
	// operation name (currently only "insert_event").
	PersistenceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentineld_persistence_errors_total",
		Help: "Total number of failed persistence sink operations.",
	}, []string{"operation"})
)

// Handler returns the HTTP handler to mount at the configured metrics
// listener path (spec.md §6's metrics.enabled/metrics.port).
func Handler() http.Handler {
	return promhttp.Handler()
}
