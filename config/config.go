// Package config loads statcore settings: built-in defaults, then an
// optional YAML file, then STATCORE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. STATCORE_CACHE_TTL.
const EnvPrefix = "STATCORE"

// Config holds the engine and front-end settings.
type Config struct {
	Content           string        `yaml:"content" split_words:"true"`
	CacheTTL          time.Duration `yaml:"cache_ttl" split_words:"true"`
	SweepInterval     time.Duration `yaml:"sweep_interval" split_words:"true"`
	EarlyExitAilments bool          `yaml:"early_exit_ailments" split_words:"true"`
	LimitWeight       bool          `yaml:"limit_weight" split_words:"true"`
	LimitSlot         bool          `yaml:"limit_slot" split_words:"true"`
	LogLevel          string        `yaml:"log_level" split_words:"true"`
	LogEncoding       string        `yaml:"log_encoding" split_words:"true"`
	LogOutput         string        `yaml:"log_output" split_words:"true"`
	MetricsAddr       string        `yaml:"metrics_addr" split_words:"true"`
	SaveDir           string        `yaml:"save_dir" split_words:"true"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		CacheTTL:          5 * time.Minute,
		SweepInterval:     30 * time.Second,
		EarlyExitAilments: true,
		LimitWeight:       true,
		LimitSlot:         true,
		LogLevel:          "info",
		LogEncoding:       "console",
		LogOutput:         "stderr",
		SaveDir:           ".",
	}
}

// Load builds the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %s", c.CacheTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %s", c.SweepInterval)
	}
	switch strings.ToLower(c.LogEncoding) {
	case "json", "console":
	default:
		return fmt.Errorf("log_encoding must be json or console, got %q", c.LogEncoding)
	}
	return nil
}
