package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trunckernel/internal/ledger"
	"trunckernel/internal/tactic"
	"trunckernel/internal/term"
)

var (
	stripWatch  bool
	stripLedger bool
	stripModel  bool
)

var stripCmd = &cobra.Command{
	Use:   "strip GOAL.yaml",
	Short: "Eliminate truncated hypotheses from a goal",
	Long: `Repeatedly replaces hypotheses h : Tr(n, A) by h : A while the goal's
target is derivably n-truncated. Fails when nothing could be stripped.

With --watch the goal is re-stripped every time the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runStrip,
}

func init() {
	stripCmd.Flags().BoolVar(&stripWatch, "watch", false, "Re-run when the goal file changes")
	stripCmd.Flags().BoolVar(&stripLedger, "ledger", false, "Record the run in the ledger (overrides ledger.enabled)")
	stripCmd.Flags().BoolVar(&stripModel, "model", true, "Replay steps in the finite model for builtin spaces")
}

func runStrip(cmd *cobra.Command, args []string) error {
	closure, err := newClosure()
	if err != nil {
		return err
	}
	stripper := tactic.NewStripper(closure, cfg.Tactic.MaxRounds)
	if stripModel {
		stripper = stripper.WithModel(term.Builtins())
	}

	var runs *ledger.Ledger
	if stripLedger || cfg.Ledger.Enabled {
		runs, err = ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer runs.Close()
	}

	out := cmd.OutOrStdout()
	if !stripWatch {
		ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
		defer cancel()
		return stripOnce(ctx, out, stripper, runs, args[0])
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rerun := func(ctx context.Context, path string) {
		if err := stripOnce(ctx, out, stripper, runs, path); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	rerun(ctx, args[0])

	watcher, err := tactic.NewGoalWatcher(args[0], rerun)
	if err != nil {
		return fmt.Errorf("failed to watch goal: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		watcher.Stop()
		return fmt.Errorf("failed to watch goal: %w", err)
	}
	defer watcher.Stop()

	<-ctx.Done()
	logger.Info("Stopped watching", zap.String("goal", args[0]))
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// stripOnce strips the goal at path and records the run when runs is set.
func stripOnce(ctx context.Context, out io.Writer, s *tactic.Stripper, runs *ledger.Ledger, path string) error {
	goal, err := tactic.LoadGoal(path)
	if err != nil {
		return err
	}
	st, err := goal.Compile()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	started := time.Now()
	res, stripErr := s.Strip(ctx, st)
	logger.Debug("Strip finished",
		zap.String("goal", path),
		zap.Int("stripped", res.Stripped()),
		zap.Duration("elapsed", time.Since(started)))

	printResult(out, path, res)

	if runs != nil {
		run := ledger.Run{
			Goal:      path,
			Target:    term.String(st.Target),
			Status:    runStatus(stripErr),
			Stripped:  res.Stripped(),
			Rounds:    res.Rounds,
			StartedAt: started,
			Duration:  time.Since(started),
			Steps:     ledgerSteps(res),
		}
		id, err := runs.RecordRun(ctx, run)
		if err != nil {
			logger.Warn("Failed to record run", zap.Error(err))
		} else {
			fmt.Fprintf(out, "recorded run %s\n", id)
		}
	}
	return stripErr
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return ledger.StatusOK
	case errors.Is(err, tactic.ErrNoProgress):
		return ledger.StatusNoProgress
	}
	return ledger.StatusError
}

func ledgerSteps(res *tactic.Result) []ledger.Step {
	var steps []ledger.Step
	for _, s := range res.Steps {
		steps = append(steps, ledger.Step{
			Seq: len(steps), Round: s.Round, Hyp: s.Hyp, Grade: s.Grade, From: s.From, To: s.To,
		})
	}
	for _, r := range res.Rejected {
		steps = append(steps, ledger.Step{
			Seq: len(steps), Round: r.Round, Hyp: r.Hyp, Grade: r.Grade, Rejected: true, Reason: r.Reason,
		})
	}
	return steps
}

func printResult(out io.Writer, path string, res *tactic.Result) {
	fmt.Fprintf(out, "%s: stripped %d in %d rounds\n", path, res.Stripped(), res.Rounds)
	for _, s := range res.Steps {
		model := ""
		if s.Modelled {
			model = " (model)"
		}
		fmt.Fprintf(out, "  [%d] %s : %s  =>  %s%s\n", s.Round, s.Hyp, s.From, s.To, model)
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(out, "  [%d] kept %s at grade %s: %s\n", r.Round, r.Hyp, r.Grade, r.Reason)
	}
	fmt.Fprintln(out, "  context:")
	for _, h := range res.Final.Hyps {
		fmt.Fprintf(out, "    %s : %s\n", h.Name, h.Type)
	}
	fmt.Fprintf(out, "    ⊢ %s\n", res.Final.Target)
}
