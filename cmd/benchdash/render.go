package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"benchdash/internal/benchmark"
	"benchdash/internal/render"

	"github.com/spf13/cobra"
)

var (
	renderFormat  string
	renderOut     string
	renderBranch  string
	renderMetrics []string
	renderTitle   string
)

var renderCmd = &cobra.Command{
	Use:   "render [benchmark...]",
	Short: "Render charts to a static HTML page or an image",
	Long: `Renders the series of the configured source. The html format writes
one interactive chart per benchmark and metric; the png format plots a single
metric of every selected benchmark into one image.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "Output format (html, png)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output file (default benchmarks.<format>)")
	renderCmd.Flags().StringVarP(&renderBranch, "branch", "b", "", "Branch to overlay on the default branch")
	renderCmd.Flags().StringSliceVarP(&renderMetrics, "metric", "m", nil, "Metrics to draw (png uses the first, default time)")
	renderCmd.Flags().StringVar(&renderTitle, "title", "Benchmarks", "Page title")
}

func runRender(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(renderFormat)
	if format != "html" && format != "png" {
		return fmt.Errorf("unsupported format: %s", renderFormat)
	}

	out := renderOut
	if out == "" {
		out = "benchmarks." + format
	}

	idx, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	series, err := selectSeries(idx, renderBranch, args, nil)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	switch format {
	case "png":
		metric := benchmark.MetricTime
		if len(renderMetrics) > 0 {
			metric = renderMetrics[0]
		}
		if err := render.PNG(out, series, metric); err != nil {
			return err
		}
	default:
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		branch := renderBranch
		if branch == "" {
			branch = idx.DefaultBranch()
		}
		page := render.NewPage(renderTitle, branch)
		if err := page.Render(f, series, renderMetrics...); err != nil {
			f.Close()
			os.Remove(out)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return nil
}
