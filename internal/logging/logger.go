// Package logging provides config-driven categorized logging for trunckernel.
// Each category is a named child of one zap logger. Logging is controlled by
// debug_mode in the logging config - when false, every category is a no-op.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Boot/initialization
	CategoryKernel   Category = "kernel"   // Mangle closure-lemma kernel
	CategoryCollapse Category = "collapse" // Collapse construction and elimination
	CategoryModality Category = "modality" // Modality registry and derived theory
	CategoryTactic   Category = "tactic"   // Hypothesis stripper
	CategoryLedger   Category = "ledger"   // SQLite run ledger
	CategoryCLI      Category = "cli"      // truncctl commands
)

// Config mirrors config.LoggingConfig to avoid circular imports.
type Config struct {
	DebugMode   bool
	Level       string
	Format      string // json or console
	Categories  map[string]bool
	OutputPaths []string
}

// Logger is a category logger. A Logger with a nil sugar is a no-op.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    *zap.Logger
	current Config
	loggers = make(map[Category]*Logger)
)

// Initialize builds the shared zap logger from cfg. With debug mode off no
// logger is built and every category stays silent.
func Initialize(cfg Config) error {
	if !cfg.DebugMode {
		setBase(nil, cfg)
		return nil
	}

	zcfg := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") || strings.EqualFold(cfg.Format, "text") {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(defaultString(cfg.Level, "info"))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zcfg.OutputPaths = cfg.OutputPaths
	}

	l, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	setBase(l, cfg)
	Get(CategoryBoot).Info("logging initialized: level=%s format=%s", level, defaultString(cfg.Format, "json"))
	return nil
}

// UseLogger installs an existing zap logger, enabling every category unless
// cfg.Categories says otherwise. Tests use it with zaptest/observer.
func UseLogger(l *zap.Logger, categories map[string]bool) {
	setBase(l, Config{DebugMode: l != nil, Categories: categories})
}

func setBase(l *zap.Logger, cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if base != nil && base != l {
		_ = base.Sync()
	}
	base = l
	current = cfg
	loggers = make(map[Category]*Logger)
}

// IsDebugMode returns whether logging is enabled at all.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return current.DebugMode && base != nil
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if !current.DebugMode || base == nil {
		return false
	}
	if current.Categories == nil {
		return true
	}
	enabled, exists := current.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{category: category}
	if categoryEnabledLocked(category) {
		l.sugar = base.Named(string(category)).Sugar()
	}
	loggers[category] = l
	return l
}

// Sync flushes the shared logger.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar != nil {
		l.sugar.Debugf(format, args...)
	}
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar != nil {
		l.sugar.Infof(format, args...)
	}
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar != nil {
		l.sugar.Warnf(format, args...)
	}
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar != nil {
		l.sugar.Errorf(format, args...)
	}
}

// With returns a logger carrying structured key-value context.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// Enabled reports whether the logger writes anything.
func (l *Logger) Enabled() bool { return l.sugar != nil }

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// Kernel logs to the kernel category
func Kernel(format string, args ...interface{}) {
	Get(CategoryKernel).Info(format, args...)
}

// KernelDebug logs debug to the kernel category
func KernelDebug(format string, args ...interface{}) {
	Get(CategoryKernel).Debug(format, args...)
}

// Collapse logs debug to the collapse category
func Collapse(format string, args ...interface{}) {
	Get(CategoryCollapse).Debug(format, args...)
}

// Modality logs to the modality category
func Modality(format string, args ...interface{}) {
	Get(CategoryModality).Info(format, args...)
}

// Tactic logs to the tactic category
func Tactic(format string, args ...interface{}) {
	Get(CategoryTactic).Info(format, args...)
}

// TacticDebug logs debug to the tactic category
func TacticDebug(format string, args ...interface{}) {
	Get(CategoryTactic).Debug(format, args...)
}

// Ledger logs to the ledger category
func Ledger(format string, args ...interface{}) {
	Get(CategoryLedger).Info(format, args...)
}
