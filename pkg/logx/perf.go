package logx

import (
	"sync"
	"time"
)

// PerformanceLogger tracks per-operation timing, adapted from the teacher
// codebase's performance logger for scan-cycle instrumentation (Goertzel
// sweeps, snapshot analysis).
type PerformanceLogger struct {
	logger  *Logger
	mu      sync.Mutex
	metrics map[string]*PerformanceMetric
}

// PerformanceMetric aggregates timing for one named operation.
type PerformanceMetric struct {
	Name          string
	Count         int64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	AvgDuration   time.Duration
	LastExecuted  time.Time
	ErrorCount    int64
}

// PerformanceContext is returned by StartOperation and closed via Complete.
type PerformanceContext struct {
	name      string
	startTime time.Time
	pl        *PerformanceLogger
}

// NewPerformanceLogger creates a performance logger backed by lg.
func NewPerformanceLogger(lg *Logger) *PerformanceLogger {
	return &PerformanceLogger{logger: lg, metrics: make(map[string]*PerformanceMetric)}
}

// StartOperation begins timing name.
func (pl *PerformanceLogger) StartOperation(name string) *PerformanceContext {
	return &PerformanceContext{name: name, startTime: time.Now(), pl: pl}
}

// Complete records the elapsed time and logs slow operations.
func (pc *PerformanceContext) Complete(err error) {
	duration := time.Since(pc.startTime)

	pc.pl.mu.Lock()
	metric, ok := pc.pl.metrics[pc.name]
	if !ok {
		metric = &PerformanceMetric{Name: pc.name, MinDuration: time.Hour}
		pc.pl.metrics[pc.name] = metric
	}
	metric.Count++
	metric.TotalDuration += duration
	metric.LastExecuted = time.Now()
	if duration < metric.MinDuration {
		metric.MinDuration = duration
	}
	if duration > metric.MaxDuration {
		metric.MaxDuration = duration
	}
	metric.AvgDuration = metric.TotalDuration / time.Duration(metric.Count)
	if err != nil {
		metric.ErrorCount++
	}
	pc.pl.mu.Unlock()

	if err != nil {
		pc.pl.logger.Error("scan operation failed", "metric", pc.name, "duration", duration.String(), "error", err.Error())
		return
	}
	if duration > 100*time.Millisecond {
		pc.pl.logger.Debug("slow scan operation", "metric", pc.name, "duration", duration.String())
	}
}

// Get returns a copy of the current metric for name, if any.
func (pl *PerformanceLogger) Get(name string) (PerformanceMetric, bool) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	m, ok := pl.metrics[name]
	if !ok {
		return PerformanceMetric{}, false
	}
	return *m, true
}
