package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupConfigDir points HOME at a temp dir and returns ~/.config/impactd inside it.
func setupConfigDir(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "impactd")
	require.NoError(t, os.MkdirAll(dir, 0700))
	return dir
}

func writeConfig(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	dir := setupConfigDir(t)
	path := writeConfig(t, dir, `
server:
  port: 9090
  shutdown_timeout: 2s
storage:
  backend: sqlite
  path: /var/lib/impactd/projects.db
registry:
  id_policy: legacy
  locale: ru
events:
  nats_url: nats://127.0.0.1:4222
  token: abc
dashboard:
  url: https://dash.example.org/
`, 0600)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout.Std())
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/impactd/projects.db", cfg.Storage.Path)
	assert.Equal(t, "legacy", cfg.Storage.Codec, "absent keys keep defaults")
	assert.Equal(t, "legacy", cfg.Registry.IDPolicy)
	assert.Equal(t, "ru", cfg.Registry.Locale)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Events.NATSURL)
	assert.Equal(t, "abc", cfg.Events.Token.Reveal())
	assert.Equal(t, DefaultSubject, cfg.Events.SubjectPrefix)
	assert.Equal(t, "https://dash.example.org/", cfg.Dashboard.URL)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	dir := setupConfigDir(t)
	path := writeConfig(t, dir, "server:\n  port: 9090\nregistry:\n  id_policy: legacy\n", 0600)

	t.Setenv("IMPACTD_SERVER_PORT", "7070")
	t.Setenv("IMPACTD_REGISTRY_ID_POLICY", "sequence")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sequence", cfg.Registry.IDPolicy)
}

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	dir := setupConfigDir(t)

	cfg, err := LoadWithFile(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadWithFile_DefaultPath(t *testing.T) {
	dir := setupConfigDir(t)
	writeConfig(t, dir, "server:\n  port: 6060\n", 0600)

	cfg, err := LoadWithFile("")
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestLoadWithFile_Rejections(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}

	t.Run("world readable", func(t *testing.T) {
		dir := setupConfigDir(t)
		path := writeConfig(t, dir, "server:\n  port: 9090\n", 0644)
		_, err := LoadWithFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insecure config file permissions")
	})

	t.Run("outside allowed dirs", func(t *testing.T) {
		setupConfigDir(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0600))
		_, err := LoadWithFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config path validation failed")
	})

	t.Run("sibling prefix dir", func(t *testing.T) {
		dir := setupConfigDir(t)
		sibling := dir + "-evil"
		require.NoError(t, os.MkdirAll(sibling, 0700))
		path := writeConfig(t, sibling, "server:\n  port: 9090\n", 0600)
		_, err := LoadWithFile(path)
		assert.Error(t, err)
	})

	t.Run("too large", func(t *testing.T) {
		dir := setupConfigDir(t)
		big := "# " + strings.Repeat("x", maxConfigFileSize) + "\n"
		path := writeConfig(t, dir, big, 0600)
		_, err := LoadWithFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("invalid values", func(t *testing.T) {
		dir := setupConfigDir(t)
		path := writeConfig(t, dir, "storage:\n  codec: tsv\n", 0600)
		_, err := LoadWithFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage codec")
	})
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"IMPACTD_SERVER_PORT":        "server.port",
		"IMPACTD_EVENTS_NATS_URL":    "events.nats_url",
		"IMPACTD_REGISTRY_ID_POLICY": "registry.id_policy",
		"IMPACTD_DASHBOARD":          "dashboard",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}
