package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config — корневая структура конфигурации приложения.
type Config struct {
	Guard     GuardConfig     `yaml:"guard"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Server    ServerConfig    `yaml:"server"`
	Sim       SimConfig       `yaml:"sim"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GuardConfig — настройки ядра безопасности.
type GuardConfig struct {
	// PriorityThreshold — нижняя граница зарезервированной полосы
	// приоритетов (тайлы с приоритетом >= порога не управляются).
	PriorityThreshold int32 `yaml:"priority_threshold"`
	// RescanEveryTicks — период полного перескана в тиках.
	RescanEveryTicks uint64 `yaml:"rescan_every_ticks"`
	// EnableOnStart включает ядро сразу после запуска.
	EnableOnStart bool `yaml:"enable_on_start"`
}

// EventBusConfig — настройки шины событий.
type EventBusConfig struct {
	// URL кластера NATS; пусто — используется in-memory шина.
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

// SimConfig — настройки демонстрационного хоста симуляции.
type SimConfig struct {
	Seed       int64 `yaml:"seed"`
	SizeX      int   `yaml:"size_x"`
	SizeY      int   `yaml:"size_y"`
	SizeZ      int   `yaml:"size_z"`
	TickMillis int   `yaml:"tick_millis"`
}

// TelemetryConfig — настройки экспорта трейсов.
type TelemetryConfig struct {
	// OTLPEndpoint — адрес OTLP HTTP коллектора (host:port);
	// пусто — стандартный localhost:4318.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	// Insecure отключает TLS при подключении к коллектору.
	Insecure bool `yaml:"insecure"`
}

// GetOTLPEndpoint возвращает адрес коллектора с учётом fallback на
// ENV GUARD_OTLP_ENDPOINT
func (t *TelemetryConfig) GetOTLPEndpoint() string {
	if t.OTLPEndpoint != "" {
		return t.OTLPEndpoint
	}
	return os.Getenv("GUARD_OTLP_ENDPOINT")
}

// ServerConfig — порты HTTP-сервисов.
type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

// GetRESTPort возвращает порт командной поверхности с учётом fallback
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "GUARD_REST_PORT", 8090)
}

// GetMetricsPort возвращает порт Prometheus-метрик с учётом fallback
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "GUARD_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

// Defaults возвращает конфигурацию по умолчанию
func Defaults() *Config {
	return &Config{
		Guard: GuardConfig{
			PriorityThreshold: 6000,
			RescanEveryTicks:  100,
			EnableOnStart:     true,
		},
		Sim: SimConfig{
			Seed:       1,
			SizeX:      96,
			SizeY:      96,
			SizeZ:      16,
			TickMillis: 50,
		},
	}
}

// Load читает YAML файл конфигурации и накладывает его на дефолты.
// Если path == "", пытается прочитать путь из ENV GUARD_CONFIG;
// при его отсутствии возвращает дефолты.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv("GUARD_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
