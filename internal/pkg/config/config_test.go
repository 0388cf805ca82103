package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "GRPC_ADDR", "REDIS_ADDR",
	"JOURNAL_PATH", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
	"IDEMPOTENCY_TTL", "TRACING_ENABLED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
app_env: prod
log_level: debug
http_addr: ":8181"
redis_addr: "redis:6379"
idempotency_ttl: 30s
journal_path: /data/cart.db
tracing:
  enabled: true
  endpoint: "http://otel:4317"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":8181", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.GRPCAddr, "unset keys keep defaults")
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.IdempotencyTTL)
	assert.Equal(t, "/data/cart.db", cfg.JournalPath)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "http://otel:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, "cart-api", cfg.Tracing.ServiceName)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "http_addr: \":8181\"\n")

	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("IDEMPOTENCY_TTL", "2m")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("OTEL_SERVICE_NAME", "cart-edge")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Minute, cfg.IdempotencyTTL)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "cart-edge", cfg.Tracing.ServiceName)
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(writeFile(t, "http_addr: [unterminated"))
		assert.ErrorContains(t, err, "config: parse")
	})

	t.Run("bad ttl env", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("IDEMPOTENCY_TTL", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "IDEMPOTENCY_TTL")
	})

	t.Run("bad bool env", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TRACING_ENABLED", "maybe")
		_, err := Load("")
		assert.ErrorContains(t, err, "TRACING_ENABLED")
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(writeFile(t, "idempotency_ttl: 0s\n"))
		assert.ErrorContains(t, err, "idempotency_ttl must be positive")
	})

	t.Run("empty http addr", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(writeFile(t, "http_addr: \"\"\n"))
		assert.ErrorContains(t, err, "http_addr is required")
	})
}
