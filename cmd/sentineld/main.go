package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/meshguard/sentinel/pkg/adapter"
	"github.com/meshguard/sentinel/pkg/alerting"
	"github.com/meshguard/sentinel/pkg/cellular"
	"github.com/meshguard/sentinel/pkg/config"
	"github.com/meshguard/sentinel/pkg/logx"
	"github.com/meshguard/sentinel/pkg/metrics"
	"github.com/meshguard/sentinel/pkg/model"
	"github.com/meshguard/sentinel/pkg/persistence"
	"github.com/meshguard/sentinel/pkg/trust"
	"github.com/meshguard/sentinel/pkg/ultrasonic"
)

var (
	configPath = flag.String("config", "/etc/sentineld/config.yaml", "Path to configuration file")
	logLevel   = flag.String("log-level", "", "Override log level (debug|info|warn|error|trace)")
	version    = flag.Bool("version", false, "Show version information")
	ephemeral  = flag.Bool("ephemeral", false, "Run in ephemeral mode: nothing is persisted to disk")
)

const (
	AppName    = "sentineld"
	AppVersion = "0.1.0"

	// towerLedgerRetention bounds the long-horizon sqlite ledger's growth;
	// the trust model's own in-memory table is unaffected.
	towerLedgerRetention = 90 * 24 * time.Hour
)

// HeartbeatData is the daemon health snapshot written to /tmp/sentineld.health.
type HeartbeatData struct {
	Timestamp     string  `json:"ts"`
	UptimeS       int64   `json:"uptime_s"`
	Version       string  `json:"version"`
	ActiveBeacons int     `json:"active_beacons"`
	MemMB         float64 `json:"mem_mb"`
	Goroutines    int     `json:"goroutines"`
}

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s version %s\n", AppName, AppVersion)
		os.Exit(0)
	}

	effectiveLogLevel := "info"
	if *logLevel != "" {
		effectiveLogLevel = *logLevel
	}
	logger := logx.NewLogger(effectiveLogLevel, AppName)

	cfgManager, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err, "path", *configPath)
		os.Exit(1)
	}
	if *ephemeral {
		cfgManager.SetEphemeralMode(true)
	}
	cfg := cfgManager.Get()
	if *logLevel == "" {
		effectiveLogLevel = cfg.LogLevel
		logger = logx.NewLogger(effectiveLogLevel, AppName)
	}

	logger.Info("starting sentineld", "version", AppVersion, "pid", os.Getpid(), "config", *configPath)

	sink, err := openSink(cfg, logger)
	if err != nil {
		logger.Error("failed to open persistence sink", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Error("failed to close persistence sink", "error", err)
		}
	}()

	ledger, err := persistence.OpenTowerLedger(cfg.Persistence.LedgerPath, cfg.EphemeralMode, logger.With("component", "tower_ledger"))
	if err != nil {
		logger.Error("failed to open tower ledger", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	reporter := newDetectorReporter(logger)
	trustModel := trust.New()

	cellEngine := cellular.New(logger.With("engine", "cellular"), cfgManager, trustModel, sink, reporter)
	ultraEngine := ultrasonic.New(logger.With("engine", "ultrasonic"), cfgManager, sink, reporter)

	mqttClient := alerting.New(cfg.MQTT, logger.With("component", "mqtt"))
	if err := mqttClient.Connect(); err != nil {
		logger.Warn("mqtt connect failed, continuing without alerting", "error", err)
	}
	defer mqttClient.Disconnect()

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			logger.Info("metrics listener started", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	telephony := adapter.NewStaticTelephonySource(1, "001", "01", -85)
	audio := adapter.NewSilentAudioSource()
	location := adapter.NewFixedLocationSource(0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	startTime := time.Now()
	heartbeatTicker := time.NewTicker(10 * time.Second)
	defer heartbeatTicker.Stop()
	go writeHeartbeat(ctx, heartbeatTicker, startTime, ultraEngine)

	go publishAlerts(ctx, cellEngine, ultraEngine, mqttClient, logger)
	go runMainLoop(ctx, cfgManager, cellEngine, ultraEngine, telephony, audio, location, reporter, ledger)

	sig := <-sigChan
	logger.Info("received shutdown signal", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded")
	case <-time.After(500 * time.Millisecond):
		logger.Info("graceful shutdown completed")
	}
}

func openSink(cfg config.Config, logger *logx.Logger) (persistence.Sink, error) {
	if cfg.EphemeralMode {
		logger.Info("ephemeral mode: persistence disabled")
		return persistence.NoopSink{}, nil
	}
	return persistence.OpenBoltSink(cfg.Persistence.BoltPath, logger.With("component", "persistence"))
}

// runMainLoop drives the two engines' scan cycles on independent tickers,
// mirroring the teacher daemon's multi-ticker select loop.
func runMainLoop(
	ctx context.Context,
	cfgManager *config.Manager,
	cellEngine *cellular.Engine,
	ultraEngine *ultrasonic.Engine,
	telephony adapter.TelephonySource,
	audio adapter.AudioSource,
	location adapter.LocationSource,
	reporter *detectorReporter,
	ledger *persistence.TowerLedger,
) {
	cfg := cfgManager.Get()
	cellularTicker := time.NewTicker(cfg.AnomalyInterval())
	defer cellularTicker.Stop()
	ultrasonicTicker := time.NewTicker(cfg.UltrasonicScanInterval())
	defer ultrasonicTicker.Stop()
	expireTicker := time.NewTicker(time.Minute)
	defer expireTicker.Stop()

	reporter.OnDetectorStarted("cellular")
	reporter.OnDetectorStarted("ultrasonic")

	for {
		select {
		case <-ctx.Done():
			reporter.OnDetectorStopped("cellular")
			reporter.OnDetectorStopped("ultrasonic")
			return

		case <-cellularTicker.C:
			now := time.Now()
			cells, err := telephony.PollCellInfo()
			if err != nil {
				reporter.OnError("cellular", err.Error(), true)
				continue
			}
			if override, ok := telephony.PollDisplayOverride(); ok {
				cellEngine.OnDisplayOverride(override)
			}
			loc, fresh := location.CurrentLocation()
			if !fresh {
				loc = nil
			}
			if _, err := cellEngine.OnCellInfo(cells, loc, now); err != nil {
				reporter.OnError("cellular", err.Error(), true)
				continue
			}
			if serving, ok := cellular.SelectServingCell(cells); ok {
				ledger.Record(towerObservation(serving, loc, now))
			}
			reporter.OnScanSuccess("cellular")

		case <-ultrasonicTicker.C:
			now := time.Now()
			loc, fresh := location.CurrentLocation()
			if !fresh {
				loc = nil
			}
			reads, err := collectScanWindow(audio, cfg.UltrasonicScanDuration())
			if err != nil {
				reporter.OnError("ultrasonic", err.Error(), true)
				continue
			}
			if _, err := ultraEngine.RunScanCycle(reads, loc, now); err != nil {
				reporter.OnError("ultrasonic", err.Error(), true)
				continue
			}
			reporter.OnScanSuccess("ultrasonic")

		case <-expireTicker.C:
			ultraEngine.ExpireBeacons(time.Now())
			ledger.PruneOlderThan(time.Now().Add(-towerLedgerRetention))
			cfg = cfgManager.Get()
			cellularTicker.Reset(cfg.AnomalyInterval())
			ultrasonicTicker.Reset(cfg.UltrasonicScanInterval())
		}
	}
}

// towerObservation builds a long-horizon ledger row from a polled serving
// cell, independent of the trust model's bounded in-memory table.
func towerObservation(cell cellular.RadioCell, loc *model.LatLon, now time.Time) persistence.TowerObservation {
	obs := persistence.TowerObservation{
		Timestamp: now,
		SignalDBM: cell.SignalDBM,
	}
	if id := cell.EffectiveCellID(); id != nil {
		obs.CellID = *id
	}
	if cell.MCC != nil {
		obs.MCC = *cell.MCC
	}
	if cell.MNC != nil {
		obs.MNC = *cell.MNC
	}
	if cell.LAC != nil {
		obs.LAC = *cell.LAC
	}
	if cell.TAC != nil {
		obs.TAC = *cell.TAC
	}
	if loc != nil {
		obs.Lat = loc.Lat
		obs.Lon = loc.Lon
	}
	return obs
}

// collectScanWindow reads as many FFT_SIZE-sized buffers as fit in
// duration at SampleRateHz, returning every read for RunScanCycle to
// aggregate (spec.md §6's audio adapter contract).
func collectScanWindow(audio adapter.AudioSource, duration time.Duration) ([][]int16, error) {
	readsPerWindow := int(duration.Seconds() * ultrasonic.SampleRateHz / ultrasonic.FFTSize)
	if readsPerWindow < 1 {
		readsPerWindow = 1
	}

	reads := make([][]int16, 0, readsPerWindow)
	for i := 0; i < readsPerWindow; i++ {
		pcm, err := audio.ReadPCM(ultrasonic.FFTSize)
		if err != nil {
			return nil, err
		}
		reads = append(reads, pcm)
	}
	return reads, nil
}

// publishAlerts fans out confirmed anomalies from both engines onto the
// MQTT client, decoupling detection from the (possibly slow) publish path.
func publishAlerts(ctx context.Context, cellEngine *cellular.Engine, ultraEngine *ultrasonic.Engine, mqttClient *alerting.Client, logger *logx.Logger) {
	cellCh, cellUnsub := cellEngine.Anomalies().Subscribe()
	defer cellUnsub()
	ultraCh, ultraUnsub := ultraEngine.Anomalies().Subscribe()
	defer ultraUnsub()

	for {
		select {
		case <-ctx.Done():
			return
		case a := <-cellCh:
			if err := mqttClient.PublishDetection(cellular.ToDetection(a)); err != nil {
				logger.Warn("mqtt publish failed", "error", err, "type", string(a.Type))
			}
		case a := <-ultraCh:
			if err := mqttClient.PublishDetection(ultrasonic.ToDetection(a)); err != nil {
				logger.Warn("mqtt publish failed", "error", err, "type", string(a.Type))
			}
		}
	}
}

func writeHeartbeat(ctx context.Context, ticker *time.Ticker, startTime time.Time, ultraEngine *ultrasonic.Engine) {
	const heartbeatFile = "/tmp/sentineld.health"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)

			active := 0
			if beacons, ok := ultraEngine.ActiveBeacons().Get(); ok {
				active = len(beacons)
			}

			heartbeat := HeartbeatData{
				Timestamp:     time.Now().Format(time.RFC3339),
				UptimeS:       int64(time.Since(startTime).Seconds()),
				Version:       AppVersion,
				ActiveBeacons: active,
				MemMB:         float64(memStats.Alloc) / 1024 / 1024,
				Goroutines:    runtime.NumGoroutine(),
			}

			data, err := json.Marshal(heartbeat)
			if err != nil {
				continue
			}

			tmp, err := os.CreateTemp("/tmp", "sentineld-heartbeat-*.tmp")
			if err != nil {
				continue
			}
			if err := os.WriteFile(tmp.Name(), data, 0o644); err != nil {
				os.Remove(tmp.Name())
				continue
			}
			if err := os.Rename(tmp.Name(), heartbeatFile); err != nil {
				os.Remove(tmp.Name())
			}
		}
	}
}

// detectorReporter implements model.ErrorReporter, tracking per-detector
// consecutive-failure state and escalating to non-recoverable at the
// MaxConsecutiveFailures threshold (spec.md §7).
type detectorReporter struct {
	logger   *logx.Logger
	statuses map[string]*model.DetectorStatus
}

func newDetectorReporter(logger *logx.Logger) *detectorReporter {
	return &detectorReporter{logger: logger, statuses: make(map[string]*model.DetectorStatus)}
}

func (r *detectorReporter) status(detectorID string) *model.DetectorStatus {
	s, ok := r.statuses[detectorID]
	if !ok {
		s = &model.DetectorStatus{DetectorID: detectorID, Recoverable: true}
		r.statuses[detectorID] = s
	}
	return s
}

func (r *detectorReporter) OnError(detectorID string, message string, recoverable bool) {
	s := r.status(detectorID)
	nonRecoverable := s.RecordFailure()
	if nonRecoverable {
		r.logger.Error("detector marked non-recoverable", "detector", detectorID, "error", message)
		return
	}
	r.logger.Warn("detector error", "detector", detectorID, "error", message, "consecutive_failures", s.ConsecutiveFailures)
}

func (r *detectorReporter) OnDetectorStarted(detectorID string) {
	s := r.status(detectorID)
	s.Running = true
	r.logger.Info("detector started", "detector", detectorID)
}

func (r *detectorReporter) OnDetectorStopped(detectorID string) {
	s := r.status(detectorID)
	s.Running = false
	r.logger.Info("detector stopped", "detector", detectorID)
}

func (r *detectorReporter) OnScanSuccess(detectorID string) {
	r.status(detectorID).RecordSuccess()
}
