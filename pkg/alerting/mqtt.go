// Package alerting publishes confirmed detections over MQTT, adapted from
// the teacher's pkg/mqtt.Client: connection lifecycle, JSON publish, and a
// fixed-window rate limiter for outbound messages, retargeted at
// model.Detection and model.TimelineEvent instead of link-health samples.
package alerting

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"

	"github.com/meshguard/sentinel/pkg/config"
	"github.com/meshguard/sentinel/pkg/logx"
	"github.com/meshguard/sentinel/pkg/model"
)

// Client publishes sentineld detections and timeline events to an MQTT
// broker. It is a best-effort sink: publish failures are logged, never
// propagated into the detection engines' hot path.
type Client struct {
	client    MQTT.Client
	logger    *logx.Logger
	cfg       config.MQTTConfig
	connected bool

	limiter *tokenBucket

	mu          sync.Mutex
	lastPublish time.Time
}

// New creates an MQTT alert publisher. Connect must be called before
// Publish* methods take effect; with cfg.Enabled false every method is a
// no-op so callers never need to branch on configuration.
func New(cfg config.MQTTConfig, logger *logx.Logger) *Client {
	return &Client{
		logger:  logger,
		cfg:     cfg,
		limiter: newTokenBucket(10, time.Second),
	}
}

// Connect establishes the broker connection; a no-op when disabled.
func (c *Client) Connect() error {
	if !c.cfg.Enabled {
		c.logger.Debug("MQTT alerting disabled")
		return nil
	}

	opts := MQTT.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", c.cfg.Broker, c.cfg.Port))
	opts.SetClientID(c.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = MQTT.NewClient(opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}

	c.logger.Info("mqtt connected", "broker", c.cfg.Broker, "port", c.cfg.Port)
	return nil
}

// Disconnect closes the broker connection, if open.
func (c *Client) Disconnect() {
	if c.client != nil && c.connected {
		c.client.Disconnect(250)
		c.connected = false
		c.logger.Info("mqtt disconnected")
	}
}

func (c *Client) onConnect(MQTT.Client) {
	c.connected = true
	c.logger.Info("mqtt connection established")
}

func (c *Client) onConnectionLost(_ MQTT.Client, err error) {
	c.connected = false
	c.logger.Warn("mqtt connection lost", "error", err.Error())
}

// PublishDetection publishes a confirmed Detection under
// "<prefix>/detections".
func (c *Client) PublishDetection(d model.Detection) error {
	return c.publish("detections", d)
}

// PublishTimelineEvent publishes a single timeline entry under
// "<prefix>/events".
func (c *Client) PublishTimelineEvent(e model.TimelineEvent) error {
	return c.publish("events", e)
}

// PublishStatus publishes a coarse liveness/status payload under
// "<prefix>/status", intended for a periodic heartbeat.
func (c *Client) PublishStatus(status map[string]interface{}) error {
	return c.publish("status", status)
}

func (c *Client) publish(subtopic string, payload interface{}) error {
	if !c.cfg.Enabled || !c.connected {
		return nil
	}
	if !c.limiter.Allow() {
		c.logger.Debug("mqtt publish rate-limited, dropping", "topic", subtopic)
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mqtt marshal: %w", err)
	}

	topic := fmt.Sprintf("%s/%s", c.cfg.TopicPrefix, subtopic)
	token := c.client.Publish(topic, byte(c.cfg.QoS), false, data)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt publish to %s: %w", topic, token.Error())
	}

	c.mu.Lock()
	c.lastPublish = time.Now()
	c.mu.Unlock()

	c.logger.Debug("mqtt published", "topic", topic, "bytes", len(data))
	return nil
}

// IsConnected reports whether the broker connection is currently live.
func (c *Client) IsConnected() bool {
	return c.connected && c.client != nil && c.client.IsConnected()
}

// LastPublish returns the time of the most recent successful publish.
func (c *Client) LastPublish() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPublish
}

// tokenBucket is a simple fixed-window rate limiter for outbound MQTT
// traffic (teacher's pkg/mqtt.RateLimiter, generalized past one window).
type tokenBucket struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	count     int
	windowEnd time.Time
}

func newTokenBucket(max int, window time.Duration) *tokenBucket {
	return &tokenBucket{max: max, window: window}
}

func (t *tokenBucket) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if now.After(t.windowEnd) {
		t.count = 0
		t.windowEnd = now.Add(t.window)
	}
	if t.count >= t.max {
		return false
	}
	t.count++
	return true
}
