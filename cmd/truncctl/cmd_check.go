package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trunckernel/internal/grade"
	"trunckernel/internal/tactic"
	"trunckernel/internal/term"
)

var errUnsound = errors.New("kernel level is below the model level")

var checkExplain bool

var checkCmd = &cobra.Command{
	Use:   "check GOAL.yaml...",
	Short: "Derive truncation levels for the types in goal files",
	Long: `Derives the least provable truncation level of every hypothesis and
target, and cross-checks it against the finite model when the type is built
from Empty, Unit and Bool. Goal files are checked concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkExplain, "explain", false, "Print the derivation of each target level")
}

// levelReport is the outcome for one type in a goal.
type levelReport struct {
	name    string
	typ     string
	level   grade.Grade
	known   bool
	model   grade.Grade
	inModel bool
	proof   string
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	reports := make([][]levelReport, len(args))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			r, err := checkGoal(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var unsound []string
	for i, path := range args {
		writeReports(cmd.OutOrStdout(), path, reports[i])
		for _, r := range reports[i] {
			if r.known && r.inModel && !r.model.Leq(r.level) {
				unsound = append(unsound, fmt.Sprintf("%s: %s", path, r.typ))
			}
		}
	}
	if len(unsound) > 0 {
		return fmt.Errorf("%w: %s", errUnsound, strings.Join(unsound, "; "))
	}
	return nil
}

// checkGoal derives levels with a kernel of its own so goals run in parallel.
func checkGoal(ctx context.Context, path string) ([]levelReport, error) {
	goal, err := tactic.LoadGoal(path)
	if err != nil {
		return nil, err
	}
	st, err := goal.Compile()
	if err != nil {
		return nil, err
	}
	closure, err := newClosure()
	if err != nil {
		return nil, err
	}
	d, err := closure.Derive(ctx, st.Problem())
	if err != nil {
		return nil, err
	}
	logger.Debug("Derived levels", zap.String("goal", path), zap.Int("facts", d.Stats().TotalFacts))

	builtins := term.Builtins()
	report := func(name string, t term.Term, explain bool) levelReport {
		r := levelReport{name: name, typ: term.String(t)}
		r.level, r.known = d.Level(t)
		if s, err := term.Eval(t, builtins); err == nil {
			r.model, r.inModel = s.Level(), true
		}
		if explain && r.known {
			if p := d.Explain(t, r.level); p != nil {
				r.proof = p.Render()
			}
		}
		return r
	}

	var out []levelReport
	for _, h := range st.Hyps {
		out = append(out, report(h.Name, h.Type, false))
	}
	out = append(out, report("⊢", st.Target, checkExplain))
	return out, nil
}

func writeReports(out io.Writer, path string, reports []levelReport) {
	fmt.Fprintf(out, "%s:\n", path)
	for _, r := range reports {
		level := "?"
		if r.known {
			level = r.level.String()
		}
		line := fmt.Sprintf("  %s : %s  level %s", r.name, r.typ, level)
		if r.inModel {
			line += fmt.Sprintf("  (model %s)", r.model)
		}
		fmt.Fprintln(out, line)
		if r.proof != "" {
			for _, l := range strings.Split(strings.TrimRight(r.proof, "\n"), "\n") {
				fmt.Fprintf(out, "      %s\n", l)
			}
		}
	}
}
