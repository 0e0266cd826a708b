// Package config loads and validates sentineld's runtime configuration,
// styled after the teacher codebase's pkg/uci/config.go: a flat struct with
// JSON tags, a Validate method, and a small loader. The literal OpenWrt UCI
// key-value format is not reused here — see DESIGN.md.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is sentineld's full runtime configuration (spec.md §6).
type Config struct {
	EphemeralMode bool `json:"ephemeral_mode" yaml:"ephemeral_mode"`

	AnomalyIntervalSeconds         int `json:"anomaly_interval_seconds" yaml:"anomaly_interval_seconds"`
	UltrasonicScanIntervalSeconds  int `json:"ultrasonic_scan_interval_seconds" yaml:"ultrasonic_scan_interval_seconds"`
	UltrasonicScanDurationSeconds  int `json:"ultrasonic_scan_duration_seconds" yaml:"ultrasonic_scan_duration_seconds"`

	LogLevel string `json:"log_level" yaml:"log_level"`

	Persistence PersistenceConfig `json:"persistence" yaml:"persistence"`
	MQTT        MQTTConfig        `json:"mqtt" yaml:"mqtt"`
	Metrics     MetricsConfig     `json:"metrics" yaml:"metrics"`
}

// PersistenceConfig configures the bbolt-backed PersistenceSink and the
// optional sqlite seen-cell-tower ledger.
type PersistenceConfig struct {
	BoltPath   string `json:"bolt_path" yaml:"bolt_path"`
	LedgerPath string `json:"ledger_path" yaml:"ledger_path"`
}

// MQTTConfig configures the outbound alert publisher.
type MQTTConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Broker      string `json:"broker" yaml:"broker"`
	Port        int    `json:"port" yaml:"port"`
	ClientID    string `json:"client_id" yaml:"client_id"`
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix"`
	QoS         int    `json:"qos" yaml:"qos"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Port    int  `json:"port" yaml:"port"`
}

// Default returns sane defaults matching spec.md §6's bounds.
func Default() *Config {
	return &Config{
		EphemeralMode:                  false,
		AnomalyIntervalSeconds:         10,
		UltrasonicScanIntervalSeconds:  20,
		UltrasonicScanDurationSeconds:  5,
		LogLevel:                       "info",
		Persistence: PersistenceConfig{
			BoltPath:   "/var/lib/sentineld/state.db",
			LedgerPath: "/var/lib/sentineld/towers.db",
		},
		MQTT: MQTTConfig{
			Broker:      "localhost",
			Port:        1883,
			ClientID:    "sentineld",
			TopicPrefix: "sentinel",
			QoS:         1,
		},
		Metrics: MetricsConfig{Port: 9110},
	}
}

// AnomalyInterval is the configured minimum interval between emissions of
// any one anomaly type (spec.md §8 rate limiting).
func (c *Config) AnomalyInterval() time.Duration {
	return time.Duration(c.AnomalyIntervalSeconds) * time.Second
}

// GlobalCooldown is half the anomaly interval, per spec.md §4.7 step 1.
func (c *Config) GlobalCooldown() time.Duration {
	return c.AnomalyInterval() / 2
}

func (c *Config) UltrasonicScanInterval() time.Duration {
	return time.Duration(c.UltrasonicScanIntervalSeconds) * time.Second
}

func (c *Config) UltrasonicScanDuration() time.Duration {
	return time.Duration(c.UltrasonicScanDurationSeconds) * time.Second
}

// Validate clamps out-of-range fields to the bounds in spec.md §6 rather
// than failing outright, since setters must be idempotent and safe to
// apply at any time.
func (c *Config) Validate() {
	c.AnomalyIntervalSeconds = clamp(c.AnomalyIntervalSeconds, 1, 30)
	c.UltrasonicScanIntervalSeconds = clamp(c.UltrasonicScanIntervalSeconds, 15, 120)
	c.UltrasonicScanDurationSeconds = clamp(c.UltrasonicScanDurationSeconds, 3, 15)
	if !isValidLogLevel(c.LogLevel) {
		c.LogLevel = "info"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error", "trace":
		return true
	default:
		return false
	}
}

// Manager owns the live Config and supports hot reload; setters are
// idempotent and take effect on the engines' next cycle since each read
// takes a fresh snapshot under the lock.
type Manager struct {
	mu   sync.RWMutex
	path string
	cfg  *Config
}

// Load reads a JSON or YAML config file (selected by extension) and
// returns a Manager; a missing file yields defaults.
func Load(path string) (*Manager, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			if err := unmarshal(path, data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.Validate()
	return &Manager{path: path, cfg: cfg}, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

// Reload re-reads the config file in place; callers keep using the same
// Manager, so the next Get call observes the new values.
func (m *Manager) Reload() error {
	next, err := Load(m.path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.cfg = next.cfg
	m.mu.Unlock()
	return nil
}

// Get returns a snapshot of the current config.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.cfg
}

// SetEphemeralMode is idempotent; transitions are detected by the
// persistence facade, not here.
func (m *Manager) SetEphemeralMode(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.EphemeralMode = enabled
}
