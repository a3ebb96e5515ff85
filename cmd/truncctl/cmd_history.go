package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trunckernel/internal/ledger"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [RUN-ID]",
	Short: "List recorded strip runs, or the steps of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	runs, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer runs.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	if len(args) == 1 {
		steps, err := runs.Steps(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ROUND\tHYP\tGRADE\tSTEP")
		for _, s := range steps {
			step := s.From + " => " + s.To
			if s.Rejected {
				step = "kept: " + s.Reason
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Round, s.Hyp, s.Grade, step)
		}
		return nil
	}

	list, err := runs.Runs(ctx, historyLimit)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tSTRIPPED\tGOAL")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, r.Stripped, r.Goal)
	}
	return nil
}
