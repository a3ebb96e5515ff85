package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all trunckernel configuration.
type Config struct {
	// Closure-lemma kernel
	Kernel KernelConfig `yaml:"kernel"`

	// Hypothesis stripper
	Tactic TacticConfig `yaml:"tactic"`

	// Run ledger
	Ledger LedgerConfig `yaml:"ledger"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// TacticConfig configures the hypothesis stripper.
type TacticConfig struct {
	// Upper bound on elimination rounds before the stripper gives up.
	MaxRounds int `yaml:"max_rounds" env:"TRUNC_MAX_ROUNDS"`
}

// LedgerConfig configures the SQLite run ledger.
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled" env:"TRUNC_LEDGER_ENABLED"`
	Path    string `yaml:"path" env:"TRUNC_LEDGER_PATH"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Kernel: KernelConfig{
			MaxGrade:     4,
			FactLimit:    100000,
			QueryTimeout: "5s",
		},

		Tactic: TacticConfig{
			MaxRounds: 64,
		},

		Ledger: LedgerConfig{
			Enabled: false,
			Path:    ".trunc/ledger.db",
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			DebugMode: false,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies TRUNC_* environment variables over the file values.
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Kernel.MaxGrade < 0 {
		return fmt.Errorf("kernel.max_grade must be >= 0, got %d", c.Kernel.MaxGrade)
	}
	if c.Kernel.FactLimit < 0 {
		return fmt.Errorf("kernel.fact_limit must be >= 0, got %d", c.Kernel.FactLimit)
	}
	if _, err := time.ParseDuration(c.Kernel.QueryTimeout); err != nil {
		return fmt.Errorf("kernel.query_timeout: %w", err)
	}
	if c.Tactic.MaxRounds < 1 {
		return fmt.Errorf("tactic.max_rounds must be >= 1, got %d", c.Tactic.MaxRounds)
	}
	if c.Ledger.Enabled && c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is required when the ledger is enabled")
	}
	return nil
}

// GetQueryTimeout returns the kernel query timeout as a duration.
func (c *Config) GetQueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Kernel.QueryTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
