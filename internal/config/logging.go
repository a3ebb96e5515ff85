package config

import "trunckernel/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty" env:"TRUNC_LOG_LEVEL"`             // debug, info, warn, error
	Format     string          `yaml:"format" json:"format,omitempty" env:"TRUNC_LOG_FORMAT"`          // json, console
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty" env:"TRUNC_DEBUG"`      // Master toggle - false = no logging
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"`                        // Per-category toggles
	Outputs    []string        `yaml:"outputs" json:"outputs,omitempty"`                              // zap output paths
}

// ToLogging converts to the logging package's own config type.
func (c LoggingConfig) ToLogging() logging.Config {
	return logging.Config{
		DebugMode:   c.DebugMode,
		Level:       c.Level,
		Format:      c.Format,
		Categories:  c.Categories,
		OutputPaths: c.Outputs,
	}
}
