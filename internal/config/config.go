// Package config provides configuration loading for impactd.
//
// Configuration is loaded from environment variables with sensible defaults,
// optionally layered over a YAML file (see LoadWithFile).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "IMPACTD_"

// Defaults.
const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 8080
	DefaultStoragePath  = "projects.csv"
	DefaultDashboardURL = "http://127.0.0.1:8050/"
	DefaultSubject      = "projects"
)

// Config holds the complete impactd configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Registry  RegistryConfig  `koanf:"registry"`
	Logging   LoggingConfig   `koanf:"logging"`
	Events    EventsConfig    `koanf:"events"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Dashboard DashboardConfig `koanf:"dashboard"`
}

// ServerConfig holds HTTP transport configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	RateLimit       float64  `koanf:"rate_limit"` // messages per second per chat, 0 disables
	RateBurst       int      `koanf:"rate_burst"`
}

// StorageConfig selects where and how the project table is persisted.
type StorageConfig struct {
	Backend string `koanf:"backend"` // file or sqlite
	Path    string `koanf:"path"`
	Codec   string `koanf:"codec"` // legacy or quoted, file backend only
}

// RegistryConfig controls command execution.
type RegistryConfig struct {
	IDPolicy string `koanf:"id_policy"` // sequence or legacy
	Locale   string `koanf:"locale"`    // en or ru
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Output string `koanf:"output"`
}

// EventsConfig configures lifecycle event publishing. Empty NATSURL disables it.
type EventsConfig struct {
	NATSURL       string `koanf:"nats_url"`
	Token         Secret `koanf:"token"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	Enabled    bool    `koanf:"enabled"`
	Endpoint   string  `koanf:"endpoint"`
	Protocol   string  `koanf:"protocol"` // grpc or http/protobuf
	Insecure   bool    `koanf:"insecure"`
	SampleRate float64 `koanf:"sample_rate"`
}

// DashboardConfig holds the externally hosted dashboard address.
type DashboardConfig struct {
	URL string `koanf:"url"`
}

// Load loads configuration from environment variables with defaults.
//
// Environment variables:
//   - IMPACTD_SERVER_HOST: listen host (default: 127.0.0.1)
//   - IMPACTD_SERVER_PORT: listen port (default: 8080)
//   - IMPACTD_SERVER_SHUTDOWN_TIMEOUT: graceful shutdown timeout (default: 10s)
//   - IMPACTD_SERVER_RATE_LIMIT: messages/second per chat (default: 5)
//   - IMPACTD_SERVER_RATE_BURST: burst per chat (default: 10)
//   - IMPACTD_STORAGE_BACKEND: file or sqlite (default: file)
//   - IMPACTD_STORAGE_PATH: data file (default: projects.csv)
//   - IMPACTD_STORAGE_CODEC: legacy or quoted (default: legacy)
//   - IMPACTD_REGISTRY_ID_POLICY: sequence or legacy (default: sequence)
//   - IMPACTD_REGISTRY_LOCALE: en or ru (default: en)
//   - IMPACTD_LOGGING_LEVEL, IMPACTD_LOGGING_FORMAT, IMPACTD_LOGGING_OUTPUT
//   - IMPACTD_EVENTS_NATS_URL, IMPACTD_EVENTS_TOKEN, IMPACTD_EVENTS_SUBJECT_PREFIX
//   - IMPACTD_TELEMETRY_ENABLED, IMPACTD_TELEMETRY_ENDPOINT
//   - IMPACTD_DASHBOARD_URL (default: http://127.0.0.1:8050/)
//
// Example:
//
//	cfg := config.Load()
//	fmt.Println("Data file:", cfg.Storage.Path)
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", DefaultHost),
			Port:            getEnvInt("SERVER_PORT", DefaultPort),
			ShutdownTimeout: Duration(getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)),
			RateLimit:       getEnvFloat("SERVER_RATE_LIMIT", 5),
			RateBurst:       getEnvInt("SERVER_RATE_BURST", 10),
		},
		Storage: StorageConfig{
			Backend: getEnvString("STORAGE_BACKEND", "file"),
			Path:    getEnvString("STORAGE_PATH", DefaultStoragePath),
			Codec:   getEnvString("STORAGE_CODEC", "legacy"),
		},
		Registry: RegistryConfig{
			IDPolicy: getEnvString("REGISTRY_ID_POLICY", "sequence"),
			Locale:   getEnvString("REGISTRY_LOCALE", "en"),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOGGING_LEVEL", "info"),
			Format: getEnvString("LOGGING_FORMAT", "json"),
			Output: getEnvString("LOGGING_OUTPUT", "stdout"),
		},
		Events: EventsConfig{
			NATSURL:       getEnvString("EVENTS_NATS_URL", ""),
			Token:         Secret(getEnvString("EVENTS_TOKEN", "")),
			SubjectPrefix: getEnvString("EVENTS_SUBJECT_PREFIX", DefaultSubject),
		},
		Telemetry: TelemetryConfig{
			Enabled:    getEnvBool("TELEMETRY_ENABLED", false),
			Endpoint:   getEnvString("TELEMETRY_ENDPOINT", "localhost:4317"),
			Protocol:   getEnvString("TELEMETRY_PROTOCOL", "grpc"),
			Insecure:   getEnvBool("TELEMETRY_INSECURE", true),
			SampleRate: getEnvFloat("TELEMETRY_SAMPLE_RATE", 1.0),
		},
		Dashboard: DashboardConfig{
			URL: getEnvString("DASHBOARD_URL", DefaultDashboardURL),
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Std() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("rate burst must be >= 1 when rate limiting, got %d", c.Server.RateBurst)
	}

	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("storage backend must be 'file' or 'sqlite', got %q", c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		return errors.New("storage path is required")
	}
	switch c.Storage.Codec {
	case "legacy", "quoted":
	default:
		return fmt.Errorf("storage codec must be 'legacy' or 'quoted', got %q", c.Storage.Codec)
	}

	switch c.Registry.IDPolicy {
	case "sequence", "legacy":
	default:
		return fmt.Errorf("registry id_policy must be 'sequence' or 'legacy', got %q", c.Registry.IDPolicy)
	}
	switch c.Registry.Locale {
	case "en", "ru":
	default:
		return fmt.Errorf("registry locale must be 'en' or 'ru', got %q", c.Registry.Locale)
	}

	if c.Events.NATSURL != "" && c.Events.SubjectPrefix == "" {
		return errors.New("events subject_prefix required when nats_url is set")
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("telemetry endpoint required when telemetry is enabled")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry sample_rate must be between 0 and 1, got %v", c.Telemetry.SampleRate)
	}

	if c.Dashboard.URL == "" {
		return errors.New("dashboard url is required")
	}

	return nil
}

// Addr returns the server listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// Helper functions for environment variable parsing

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(value)); err == nil {
			return d.Std()
		}
	}
	return defaultValue
}
