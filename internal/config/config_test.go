package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, int32(6000), cfg.Guard.PriorityThreshold)
	assert.Equal(t, uint64(100), cfg.Guard.RescanEveryTicks)
	assert.True(t, cfg.Guard.EnableOnStart)
	assert.Equal(t, "", cfg.EventBus.URL, "По умолчанию — in-memory шина")
	assert.Equal(t, int64(1), cfg.Sim.Seed)
}

func TestLoad_MissingPathReturnsDefaults(t *testing.T) {
	os.Unsetenv("GUARD_CONFIG")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_YamlOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	data := `
guard:
  priority_threshold: 7000
  enable_on_start: false
eventbus:
  url: nats://127.0.0.1:4222
  stream: TEST
sim:
  seed: 99
server:
  rest_port: 9999
telemetry:
  otlp_endpoint: otel-collector:4318
  insecure: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int32(7000), cfg.Guard.PriorityThreshold)
	assert.False(t, cfg.Guard.EnableOnStart)
	assert.Equal(t, uint64(100), cfg.Guard.RescanEveryTicks,
		"Непереопределённые поля сохраняют дефолты")
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.EventBus.URL)
	assert.Equal(t, "TEST", cfg.EventBus.Stream)
	assert.Equal(t, int64(99), cfg.Sim.Seed)
	assert.Equal(t, 9999, cfg.Server.GetRESTPort())
	assert.Equal(t, "otel-collector:4318", cfg.Telemetry.GetOTLPEndpoint())
	assert.True(t, cfg.Telemetry.Insecure)
}

func TestTelemetryConfig_EndpointFallback(t *testing.T) {
	var tc TelemetryConfig

	os.Unsetenv("GUARD_OTLP_ENDPOINT")
	assert.Equal(t, "", tc.GetOTLPEndpoint(), "Без настроек — дефолт экспортера")

	t.Setenv("GUARD_OTLP_ENDPOINT", "collector:4318")
	assert.Equal(t, "collector:4318", tc.GetOTLPEndpoint())

	tc.OTLPEndpoint = "other:4318"
	assert.Equal(t, "other:4318", tc.GetOTLPEndpoint(), "Конфиг важнее переменной окружения")
}

func TestLoad_BadYaml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("guard: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yml")
	assert.Error(t, err)
}

func TestServerConfig_PortFallbacks(t *testing.T) {
	var sc ServerConfig

	os.Unsetenv("GUARD_REST_PORT")
	os.Unsetenv("GUARD_METRICS_PORT")
	assert.Equal(t, 8090, sc.GetRESTPort())
	assert.Equal(t, 2112, sc.GetMetricsPort())

	t.Setenv("GUARD_REST_PORT", "7070")
	assert.Equal(t, 7070, sc.GetRESTPort())

	t.Setenv("GUARD_REST_PORT", "not-a-port")
	assert.Equal(t, 8090, sc.GetRESTPort())

	sc.RESTPort = 6000
	t.Setenv("GUARD_REST_PORT", "7070")
	assert.Equal(t, 6000, sc.GetRESTPort(), "Конфиг важнее переменной окружения")
}
