package render

import (
	"fmt"
	"log/slog"

	"benchdash/internal/benchmark"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PNG draws one metric of every series into a single line plot saved at
// path, one line per benchmark. Bands are drawn as dashed lines in the
// benchmark's colour. The image format follows the path's extension.
func PNG(path string, series []benchmark.Series, metric string) error {
	l := slog.Default().With(slog.String("module", "render"))

	p := plot.New()
	p.Title.Text = metric
	p.X.Label.Text = "commits relative to head"
	p.Y.Label.Text = metric
	p.Legend.Top = true

	var drawn int
	for i, s := range series {
		pts, lo, hi := metricXYs(s, metric)
		if len(pts) == 0 {
			l.Warn("benchmark has no values for metric", slog.String("benchmark", s.Name), slog.String("metric", metric))
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(s.Name, line)

		for _, band := range []plotter.XYs{lo, hi} {
			if len(band) == 0 {
				continue
			}
			bl, err := plotter.NewLine(band)
			if err != nil {
				return fmt.Errorf("plot %s band: %w", s.Name, err)
			}
			bl.Color = plotutil.Color(i)
			bl.Width = vg.Points(1)
			bl.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			p.Add(bl)
		}
		drawn++
	}

	if drawn == 0 {
		return fmt.Errorf("plot %s: %w", metric, benchmark.ErrNoMatch)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	l.Info("saved plot", slog.String("path", path), slog.Int("benchmarks", drawn))
	return nil
}

func metricXYs(s benchmark.Series, metric string) (pts, lo, hi plotter.XYs) {
	for _, pt := range s.Points {
		mv, ok := pt.Metrics[metric]
		if !ok {
			continue
		}
		x := float64(pt.RelativeCommitIndex)
		pts = append(pts, plotter.XY{X: x, Y: mv.Value})
		if len(mv.Bounds) == 2 {
			lo = append(lo, plotter.XY{X: x, Y: mv.Bounds[0]})
			hi = append(hi, plotter.XY{X: x, Y: mv.Bounds[1]})
		}
	}
	return pts, lo, hi
}
