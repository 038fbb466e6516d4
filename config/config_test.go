package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"API_SECRET", "GEMINI_API_KEY", "GEMINI_KEY", "PORT", "MONGO_URI", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), CONFIG_FILE)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, c.Server.Port)
	assert.Equal(t, DefaultGeminiModel, c.Gemini.Model)
	assert.Equal(t, DefaultBucketCapacity, c.RateLimit.Capacity)
	assert.Equal(t, DefaultRefillIntervalMs, c.RateLimit.RefillIntervalMs)
	assert.Equal(t, DefaultMaxChunkSize, c.Chunking.MaxChunkSize)
	assert.Equal(t, DefaultMaxRetries, c.Retry.MaxRetries)
	assert.Equal(t, DefaultRetryBaseDelayMs, c.Retry.BaseDelayMs)
	assert.Equal(t, "info", c.Logging.Level)
	assert.False(t, c.UsageLog.Enabled)
	assert.Empty(t, c.APISecret)
	assert.InDelta(t, 0.001, c.RateLimit.RefillRatePerMs(), 1e-12)
	assert.Equal(t, DefaultReplayDelaySeconds, c.Kafka.ReplayDelaySeconds)
	assert.Equal(t, DefaultMaxReplays, c.Kafka.MaxReplays)
}

func TestLoadReadsYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 8081
rate_limit:
  capacity: 10
  refill_interval_ms: 500
retry:
  max_retries: 2
usage_log:
  enabled: true
kafka:
  request_topic: custom.requests
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, c.Server.Port)
	assert.Equal(t, 10, c.RateLimit.Capacity)
	assert.InDelta(t, 0.002, c.RateLimit.RefillRatePerMs(), 1e-12)
	assert.Equal(t, 2, c.Retry.MaxRetries)
	assert.Equal(t, DefaultRetryBaseDelayMs, c.Retry.BaseDelayMs)
	assert.True(t, c.UsageLog.Enabled)
	assert.Equal(t, "custom.requests", c.Kafka.RequestTopic)
	assert.Equal(t, DefaultResultTopic, c.Kafka.ResultTopic)
}

func TestLoadNonPositiveValuesFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
rate_limit:
  capacity: 0
  refill_interval_ms: -1
retry:
  max_retries: 0
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultBucketCapacity, c.RateLimit.Capacity)
	assert.Equal(t, DefaultRefillIntervalMs, c.RateLimit.RefillIntervalMs)
	assert.Equal(t, DefaultMaxRetries, c.Retry.MaxRetries)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_SECRET", "s3cret")
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MONGO_URI", "mongodb://example:27017")
	path := writeConfig(t, "server:\n  port: 8081\n")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", c.APISecret)
	assert.Equal(t, "gk", c.GeminiAPIKey)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, "mongodb://example:27017", c.Mongo.URI)
}

func TestGeminiKeyFallsBackToLegacyName(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_KEY", "legacy")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "legacy", c.GeminiAPIKey)

	t.Setenv("GEMINI_API_KEY", "current")
	c, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "current", c.GeminiAPIKey)
}

func TestInvalidPortEnvIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, c.Server.Port)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server: [port")

	_, err := Load(path)
	assert.Error(t, err)
}
