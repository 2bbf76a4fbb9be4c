package main

import (
	"errors"
	"fmt"

	"benchdash/internal/benchmark"
	"benchdash/internal/render"

	"github.com/spf13/cobra"
)

var (
	compareMetric string
	compareHead   string
	compareJSON   bool
	compareFail   bool
)

// ErrRegression is returned with --fail-on-regression when head is
// significantly worse than the baseline.
var ErrRegression = errors.New("significant regression detected")

var compareCmd = &cobra.Command{
	Use:   "compare <benchmark>",
	Short: "Compare a branch against the default branch",
	Long: `Compares every run of a benchmark on --head with the runs on the
default branch using a Mann-Whitney U-test, and reports the change of the
mean together with its significance.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVarP(&compareMetric, "metric", "m", benchmark.MetricTime, "Metric to compare")
	compareCmd.Flags().StringVar(&compareHead, "head", "", "Branch to compare against the default branch")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Output the comparison as JSON")
	compareCmd.Flags().BoolVar(&compareFail, "fail-on-regression", false, "Exit non-zero on a significant regression")
	compareCmd.MarkFlagRequired("head")
}

func runCompare(cmd *cobra.Command, args []string) error {
	idx, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	c, err := idx.Compare(args[0], compareMetric, compareHead)
	if err != nil {
		return err
	}

	if compareJSON {
		if err := writeJSON(cmd.OutOrStdout(), c); err != nil {
			return err
		}
	} else {
		printComparison(cmd, c)
	}

	if compareFail && verdict(c) == verdictRegression {
		return ErrRegression
	}
	return nil
}

const (
	verdictNone        = "no significant change"
	verdictImprovement = "improvement"
	verdictRegression  = "regression"
)

// verdict reads the direction of a significant change. Time is better when
// lower, throughput metrics when higher.
func verdict(c benchmark.Comparison) string {
	if !c.Significant || c.DeltaPct == 0 {
		return verdictNone
	}
	better := c.DeltaPct > 0
	if lowerIsBetter(c.Metric) {
		better = !better
	}
	if better {
		return verdictImprovement
	}
	return verdictRegression
}

func lowerIsBetter(metric string) bool {
	switch metric {
	case benchmark.MetricOpsPerSec, benchmark.MetricMBsPerSec:
		return false
	default:
		return true
	}
}

func printComparison(cmd *cobra.Command, c benchmark.Comparison) {
	out := cmd.OutOrStdout()
	printTitle(out, fmt.Sprintf("%s (%s)", c.Name, c.Metric))

	t := newTable("BRANCH", "RUNS", "MEAN")
	t.Row(c.Base, fmt.Sprint(c.BaseN), render.FormatValue(c.BaseMean))
	t.Row(c.Head, fmt.Sprint(c.HeadN), render.FormatValue(c.HeadMean))
	fmt.Fprintln(out, t.Render())

	v := verdict(c)
	style := mutedStyle
	switch v {
	case verdictImprovement:
		style = goodStyle
	case verdictRegression:
		style = badStyle
	}
	fmt.Fprintf(out, "delta %+.2f%%  p=%.3f  alpha=%.2f  %s\n", c.DeltaPct, c.P, c.Alpha, style.Render(v))
}
