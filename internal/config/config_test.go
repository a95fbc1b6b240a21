package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Std())
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, DefaultStoragePath, cfg.Storage.Path)
	assert.Equal(t, "legacy", cfg.Storage.Codec)
	assert.Equal(t, "sequence", cfg.Registry.IDPolicy)
	assert.Equal(t, "en", cfg.Registry.Locale)
	assert.Equal(t, DefaultDashboardURL, cfg.Dashboard.URL)
	assert.Empty(t, cfg.Events.NATSURL)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IMPACTD_SERVER_PORT", "9191")
	t.Setenv("IMPACTD_SERVER_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("IMPACTD_STORAGE_CODEC", "quoted")
	t.Setenv("IMPACTD_REGISTRY_LOCALE", "ru")
	t.Setenv("IMPACTD_EVENTS_TOKEN", "s3cret")
	t.Setenv("IMPACTD_SERVER_RATE_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Std())
	assert.Equal(t, "quoted", cfg.Storage.Codec)
	assert.Equal(t, "ru", cfg.Registry.Locale)
	assert.Equal(t, "s3cret", cfg.Events.Token.Reveal())
	assert.Equal(t, 5.0, cfg.Server.RateLimit, "unparsable value falls back to default")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "invalid server port"},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "invalid server port"},
		{name: "no shutdown timeout", mutate: func(c *Config) { c.Server.ShutdownTimeout = 0 }, wantErr: "shutdown timeout"},
		{name: "negative rate", mutate: func(c *Config) { c.Server.RateLimit = -1 }, wantErr: "rate limit"},
		{name: "zero burst", mutate: func(c *Config) { c.Server.RateBurst = 0 }, wantErr: "rate burst"},
		{name: "zero burst without limit", mutate: func(c *Config) { c.Server.RateLimit = 0; c.Server.RateBurst = 0 }},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "s3" }, wantErr: "storage backend"},
		{name: "empty path", mutate: func(c *Config) { c.Storage.Path = "" }, wantErr: "storage path"},
		{name: "unknown codec", mutate: func(c *Config) { c.Storage.Codec = "tsv" }, wantErr: "storage codec"},
		{name: "unknown id policy", mutate: func(c *Config) { c.Registry.IDPolicy = "random" }, wantErr: "id_policy"},
		{name: "unknown locale", mutate: func(c *Config) { c.Registry.Locale = "de" }, wantErr: "locale"},
		{name: "nats without prefix", mutate: func(c *Config) {
			c.Events.NATSURL = "nats://127.0.0.1:4222"
			c.Events.SubjectPrefix = ""
		}, wantErr: "subject_prefix"},
		{name: "telemetry without endpoint", mutate: func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}, wantErr: "telemetry endpoint"},
		{name: "bad sample rate", mutate: func(c *Config) { c.Telemetry.SampleRate = 2 }, wantErr: "sample_rate"},
		{name: "no dashboard", mutate: func(c *Config) { c.Dashboard.URL = "" }, wantErr: "dashboard url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", ServerConfig{Host: "0.0.0.0", Port: 8080}.Addr())
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("token-value")

	assert.Equal(t, "***", s.String())
	assert.Equal(t, "***", fmt.Sprintf("%v", s))
	assert.Equal(t, `config.Secret("***")`, fmt.Sprintf("%#v", s))
	assert.Equal(t, "token-value", s.Reveal())

	data, err := json.Marshal(EventsConfig{Token: s})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "token-value")
	assert.Contains(t, string(data), `"***"`)

	assert.Equal(t, "", Secret("").String())

	var parsed Secret
	require.NoError(t, parsed.UnmarshalText([]byte(" abc \n")))
	assert.Equal(t, "abc", parsed.Reveal())
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "1m30s", want: 90 * time.Second},
		{in: "45", want: 45 * time.Second},
		{in: " 2s ", want: 2 * time.Second},
		{in: "-5s", wantErr: true},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Std())
		})
	}

	out, err := Duration(90 * time.Second).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(out))
}
