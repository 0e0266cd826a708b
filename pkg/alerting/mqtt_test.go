package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meshguard/sentinel/pkg/config"
	"github.com/meshguard/sentinel/pkg/logx"
	"github.com/meshguard/sentinel/pkg/model"
)

func TestDisabledClientIsNoOp(t *testing.T) {
	logger := logx.NewLogger("error", "test")
	client := New(config.MQTTConfig{Enabled: false}, logger)

	assert.NoError(t, client.Connect())
	assert.False(t, client.IsConnected())
	assert.NoError(t, client.PublishDetection(model.Detection{}))
	assert.NoError(t, client.PublishStatus(map[string]interface{}{"ok": true}))
}

func TestTokenBucketAllowsUpToMax(t *testing.T) {
	tb := newTokenBucket(3, time.Minute)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestTokenBucketResetsAfterWindow(t *testing.T) {
	tb := newTokenBucket(1, 10*time.Millisecond)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	time.Sleep(15 * time.Millisecond)
	assert.True(t, tb.Allow())
}
