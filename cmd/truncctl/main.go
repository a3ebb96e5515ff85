package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"trunckernel/internal/config"
	"trunckernel/internal/grade"
	"trunckernel/internal/logging"
	"trunckernel/internal/mangle"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "truncctl",
	Short: "truncctl - graded truncation kernel",
	Long: `truncctl strips truncated hypotheses from goals, checks truncation
levels of type terms, and collapses finite spaces at a chosen grade.

Levels are derived by closure lemmas evaluated in Google Mangle (Datalog).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}
		if err := logging.Initialize(cfg.Logging.ToLogging()); err != nil {
			return err
		}
		logging.Boot("config loaded from %s (max_grade=%d, max_rounds=%d)", configPath, cfg.Kernel.MaxGrade, cfg.Tactic.MaxRounds)
		logging.Get(logging.CategoryCLI).Debug("running %s", cmd.CommandPath())

		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".trunc/config.yaml", "Config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")

	rootCmd.AddCommand(stripCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(collapseCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newClosure builds a kernel from the kernel section of the config.
func newClosure() (*mangle.Closure, error) {
	return mangle.NewClosure(mangle.Config{
		FactLimit:    cfg.Kernel.FactLimit,
		QueryTimeout: cfg.GetQueryTimeout(),
	}, grade.Grade(cfg.Kernel.MaxGrade))
}
