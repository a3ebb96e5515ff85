package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trunckernel/internal/grade"
	"trunckernel/internal/space"
	"trunckernel/internal/trunc"
)

var collapseGrade string

var collapseCmd = &cobra.Command{
	Use:   "collapse --grade N SPACE.yaml",
	Short: "Collapse a finite space at a grade and print the carrier",
	Long: `Builds Tr(N, A) for the space A described in SPACE.yaml and prints its
carrier in the same file format. N is an integer >= -2, or inf.`,
	Args: cobra.ExactArgs(1),
	RunE: runCollapse,
}

func init() {
	collapseCmd.Flags().StringVarP(&collapseGrade, "grade", "n", "", "Collapse grade (required)")
	collapseCmd.MarkFlagRequired("grade")
}

func runCollapse(cmd *cobra.Command, args []string) error {
	n, err := grade.Parse(collapseGrade)
	if err != nil {
		return err
	}
	a, err := space.Load(args[0])
	if err != nil {
		return err
	}

	t := trunc.Collapse(n, a)
	carrier := t.Carrier()
	logger.Debug("Collapsed space",
		zap.String("source", a.Name()),
		zap.Stringer("grade", n),
		zap.Int("points", carrier.Len()))

	data, err := space.Encode(carrier)
	if err != nil {
		return fmt.Errorf("failed to encode carrier: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# source level %s, carrier level %s\n", a.Level(), carrier.Level())
	_, err = out.Write(data)
	return err
}
