// Package config resolves Learning Hub settings from defaults, an optional
// YAML file and LEARNINGHUB_* environment variables. Command-line flags are
// applied on top by the cmd package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all client and local-backend settings.
type Config struct {
	// Language selects the UI catalog: "en" or "es".
	Language string `yaml:"language"`

	API     APIConfig     `yaml:"api"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Backend BackendConfig `yaml:"backend"`
}

// APIConfig configures the HTTP gateways the client talks to.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout bounds a single request, e.g. "15s".
	Timeout string `yaml:"timeout"`
	// GenerationTimeout bounds AI generation requests, which are slower.
	GenerationTimeout string `yaml:"generation_timeout"`
}

// StoreConfig configures local persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the file logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`
}

// BackendConfig configures `learninghub backend`.
type BackendConfig struct {
	Addr     string `yaml:"addr"`
	Path     string `yaml:"db_path"`
	Provider string `yaml:"llm_provider"`
	Model    string `yaml:"llm_model"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Language: "es",
		API: APIConfig{
			BaseURL:           "http://127.0.0.1:8787",
			Timeout:           "15s",
			GenerationTimeout: "60s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Backend: BackendConfig{
			Addr: "127.0.0.1:8787",
		},
	}
}

// Load reads path (when it exists) over the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"LEARNINGHUB_LANG", &c.Language},
		{"LEARNINGHUB_API_URL", &c.API.BaseURL},
		{"LEARNINGHUB_API_TIMEOUT", &c.API.Timeout},
		{"LEARNINGHUB_DB", &c.Store.Path},
		{"LEARNINGHUB_LOG_LEVEL", &c.Logging.Level},
		{"LEARNINGHUB_LOG_FILE", &c.Logging.File},
		{"LEARNINGHUB_BACKEND_ADDR", &c.Backend.Addr},
		{"LEARNINGHUB_BACKEND_DB", &c.Backend.Path},
		{"LEARNINGHUB_LLM_PROVIDER", &c.Backend.Provider},
		{"LEARNINGHUB_LLM_MODEL", &c.Backend.Model},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

// RequestTimeout parses API.Timeout, defaulting to 15s.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.API.Timeout, 15*time.Second)
}

// GenerationRequestTimeout parses API.GenerationTimeout, defaulting to 60s.
func (c *Config) GenerationRequestTimeout() time.Duration {
	return parseDuration(c.API.GenerationTimeout, 60*time.Second)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Language {
	case "en", "es":
	default:
		return fmt.Errorf("unsupported language %q (want en or es)", c.Language)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	for name, v := range map[string]string{
		"api.timeout":            c.API.Timeout,
		"api.generation_timeout": c.API.GenerationTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
