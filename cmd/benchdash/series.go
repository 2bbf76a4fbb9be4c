package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"benchdash/internal/benchmark"
	"benchdash/internal/polling"
	"benchdash/internal/render"

	"github.com/spf13/cobra"
)

var (
	seriesBranch  string
	seriesMetrics []string
	seriesJSON    bool
	seriesWatch   time.Duration
)

var seriesCmd = &cobra.Command{
	Use:   "series [benchmark...]",
	Short: "Print chart series built from the configured source",
	Long: `Builds one series per benchmark from the default branch and, with
--branch, the given branch. Each point is a commit labelled relative to the
newest one; commits with several runs show their uncertainty band.`,
	RunE: runSeries,
}

func init() {
	rootCmd.AddCommand(seriesCmd)
	seriesCmd.Flags().StringVarP(&seriesBranch, "branch", "b", "", "Branch to overlay on the default branch")
	seriesCmd.Flags().StringSliceVarP(&seriesMetrics, "metric", "m", nil, "Metrics to include (default all)")
	seriesCmd.Flags().BoolVar(&seriesJSON, "json", false, "Output series as JSON")
	seriesCmd.Flags().DurationVarP(&seriesWatch, "watch", "w", 0, "Re-fetch and print on this interval until interrupted")
}

func runSeries(cmd *cobra.Command, args []string) error {
	if seriesWatch <= 0 {
		return printSeries(cmd.Context(), cmd, args)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	poller := polling.NewPoller(polling.NewConfig(seriesWatch), func(ctx context.Context) error {
		fmt.Fprintln(out, mutedStyle.Render(time.Now().Format(time.RFC3339)))
		return printSeries(ctx, cmd, args)
	})
	poller.Start(ctx)
	return nil
}

func printSeries(ctx context.Context, cmd *cobra.Command, names []string) error {
	idx, err := loadIndex(ctx)
	if err != nil {
		return err
	}

	series, err := selectSeries(idx, seriesBranch, names, seriesMetrics)
	if err != nil {
		return err
	}

	if seriesJSON {
		return writeJSON(cmd.OutOrStdout(), series)
	}

	out := cmd.OutOrStdout()
	for i, s := range series {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printTitle(out, s.Name)
		if len(s.Points) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("no commits"))
			continue
		}

		t := newTable(append([]string{"REF", "COMMIT"}, s.Metrics...)...)
		for _, p := range s.Points {
			row := []string{render.Ref(p.Branch, p.RelativeCommitIndex), p.Name}
			for _, m := range s.Metrics {
				row = append(row, formatMetric(p.Metrics, m))
			}
			t.Row(row...)
		}
		fmt.Fprintln(out, t.Render())
	}
	return nil
}

// selectSeries builds the series of the named benchmarks, or of all of them.
func selectSeries(idx *benchmark.Index, branch string, names, metrics []string) ([]benchmark.Series, error) {
	all := idx.Build(branch)
	if len(names) == 0 {
		for i := range all {
			all[i] = all[i].Filter(metrics...)
		}
		return all, nil
	}

	byName := make(map[string]benchmark.Series, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}

	out := make([]benchmark.Series, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("benchmark %q: %w", name, benchmark.ErrNoMatch)
		}
		out = append(out, s.Filter(metrics...))
	}
	return out, nil
}

func formatMetric(values map[string]benchmark.MetricValue, metric string) string {
	v, ok := values[metric]
	if !ok {
		return "-"
	}
	if len(v.Bounds) != 2 {
		return render.FormatValue(v.Value)
	}
	var sb strings.Builder
	sb.WriteString(render.FormatValue(v.Value))
	sb.WriteString(" [")
	sb.WriteString(render.FormatValue(v.Bounds[0]))
	sb.WriteString(", ")
	sb.WriteString(render.FormatValue(v.Bounds[1]))
	sb.WriteString("]")
	return sb.String()
}
