package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Docker.HubURL, cfg.Docker.HubURL)
	assert.Equal(t, 2*time.Second, cfg.Process.TermGrace)
	assert.Equal(t, 7890, cfg.Proxy.Port)
}

func TestLoadFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log_level: debug
docker:
  sudo: true
  hub_url: http://localhost:9999
process:
  term_grace: 500ms
proxy:
  port: 1080
  scheme: socks5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Docker.Sudo)
	assert.Equal(t, "http://localhost:9999", cfg.Docker.HubURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Process.TermGrace)
	assert.Equal(t, time.Second, cfg.Process.KillGrace, "unset keys keep defaults")
	assert.Equal(t, 1080, cfg.Proxy.Port)
	assert.Equal(t, "socks5", cfg.Proxy.Scheme)
	assert.Equal(t, "127.0.0.1", cfg.Proxy.Host)
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("docker: [unclosed"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SHELLKIT_LOG_LEVEL":   "info",
		"SHELLKIT_DOCKER_SUDO": "true",
		"SHELLKIT_KILL_GRACE":  "3s",
		"SHELLKIT_PROXY_PORT":  "8080",
		"SHELLKIT_NO_PROXY":    "localhost",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, applyEnv(&cfg, lookup))
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Docker.Sudo)
	assert.Equal(t, 3*time.Second, cfg.Process.KillGrace)
	assert.Equal(t, 8080, cfg.Proxy.Port)
	assert.Equal(t, "localhost", cfg.Proxy.NoProxy)
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := map[string]string{
		"SHELLKIT_DOCKER_SUDO": "maybe",
		"SHELLKIT_TERM_GRACE":  "soon",
		"SHELLKIT_PROXY_PORT":  "http",
	}
	for key, value := range tests {
		key, value := key, value
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := applyEnv(&cfg, func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			})
			assert.Error(t, err)
		})
	}
}

func TestPathHonorsOverride(t *testing.T) {
	t.Setenv("SHELLKIT_CONFIG", "/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", Path())

	t.Setenv("SHELLKIT_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "shellkit", "config.yaml"), Path())
}
