// Package config loads shellkit settings.
//
// Sources, lowest priority first:
//  1. Built-in defaults
//  2. YAML file ($SHELLKIT_CONFIG, else $XDG_CONFIG_HOME/shellkit/config.yaml)
//  3. A .env file next to the YAML file
//  4. SHELLKIT_* environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the merged shellkit configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Docker   DockerConfig  `yaml:"docker"`
	Process  ProcessConfig `yaml:"process"`
	Proxy    ProxyConfig   `yaml:"proxy"`
}

// DockerConfig controls the docker helpers.
type DockerConfig struct {
	// Sudo prefixes the CLI-backed docker invocations (logs -f, exec -it)
	// with sudo. It applies to nothing else: list, lifecycle actions and
	// browse talk to the engine through the SDK, which needs direct access to
	// the Docker socket (membership in the docker group, or a DOCKER_HOST the
	// user can reach).
	Sudo    bool          `yaml:"sudo"`
	HubURL  string        `yaml:"hub_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ProcessConfig controls the TERM -> KILL escalation delays.
type ProcessConfig struct {
	TermGrace time.Duration `yaml:"term_grace"`
	KillGrace time.Duration `yaml:"kill_grace"`
}

// ProxyConfig holds the defaults used by `proxy set`.
type ProxyConfig struct {
	Scheme  string `yaml:"scheme"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	NoProxy string `yaml:"no_proxy"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Docker: DockerConfig{
			HubURL:  "https://hub.docker.com",
			Timeout: 10 * time.Second,
		},
		Process: ProcessConfig{
			TermGrace: 2 * time.Second,
			KillGrace: time.Second,
		},
		Proxy: ProxyConfig{
			Scheme:  "http",
			Host:    "127.0.0.1",
			Port:    7890,
			NoProxy: "localhost,127.0.0.1,::1,192.168.0.0/16,10.0.0.0/8",
		},
	}
}

// Path returns the configuration file location.
func Path() string {
	if p := os.Getenv("SHELLKIT_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "shellkit", "config.yaml")
}

// Load reads the configuration from the default location.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the configuration from path. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}

		// Existing variables win over the .env file.
		envFile := filepath.Join(filepath.Dir(path), ".env")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("SHELLKIT_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("SHELLKIT_DOCKER_SUDO"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SHELLKIT_DOCKER_SUDO: %w", err)
		}
		cfg.Docker.Sudo = b
	}
	if v, ok := lookup("SHELLKIT_DOCKER_HUB_URL"); ok && v != "" {
		cfg.Docker.HubURL = v
	}
	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"SHELLKIT_DOCKER_TIMEOUT", &cfg.Docker.Timeout},
		{"SHELLKIT_TERM_GRACE", &cfg.Process.TermGrace},
		{"SHELLKIT_KILL_GRACE", &cfg.Process.KillGrace},
	} {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	if v, ok := lookup("SHELLKIT_PROXY_HOST"); ok && v != "" {
		cfg.Proxy.Host = v
	}
	if v, ok := lookup("SHELLKIT_PROXY_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHELLKIT_PROXY_PORT: %w", err)
		}
		cfg.Proxy.Port = port
	}
	if v, ok := lookup("SHELLKIT_NO_PROXY"); ok && v != "" {
		cfg.Proxy.NoProxy = v
	}
	return nil
}
