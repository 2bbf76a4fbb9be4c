package render

import (
	"fmt"
	"io"
	"log/slog"

	"benchdash/internal/benchmark"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// missing is how echarts marks a gap in a line.
const missing = "-"

// Page builds an HTML page of line charts, one per benchmark and metric.
// Branch labels points that carry no branch of their own.
type Page struct {
	Title  string
	Branch string
	l      *slog.Logger
}

func NewPage(title, branch string) *Page {
	if branch == "" {
		branch = benchmark.DefaultBranch
	}
	return &Page{
		Title:  title,
		Branch: branch,
		l:      slog.Default().With(slog.String("module", "render")),
	}
}

// Render writes the page. With no metrics given every metric of every series
// is charted.
func (p *Page) Render(w io.Writer, series []benchmark.Series, metrics ...string) error {
	page := components.NewPage()
	page.PageTitle = p.Title
	page.SetLayout(components.PageFlexLayout)

	var n int
	for _, s := range series {
		if len(metrics) > 0 {
			s = s.Filter(metrics...)
		}
		if len(s.Points) == 0 {
			p.l.Warn("empty series skipped", slog.String("benchmark", s.Name))
			continue
		}

		for _, metric := range s.Metrics {
			page.AddCharts(p.lineChart(s, metric))
			n++
		}
	}

	if n == 0 {
		return fmt.Errorf("render page: %w", benchmark.ErrNoMatch)
	}

	p.l.Info("added charts", slog.Int("charts", n))
	return page.Render(w)
}

func (p *Page) lineChart(s benchmark.Series, metric string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "640px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: s.Name, Subtitle: metric}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "commit"}),
		charts.WithYAxisOpts(opts.YAxis{Name: metric, Scale: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(s.Points))
	values := make([]opts.LineData, 0, len(s.Points))
	lower := make([]opts.LineData, 0, len(s.Points))
	upper := make([]opts.LineData, 0, len(s.Points))
	var banded bool

	for _, pt := range s.Points {
		branch := pt.Branch
		if branch == "" {
			branch = p.Branch
		}
		labels = append(labels, Ref(branch, pt.RelativeCommitIndex))

		mv, ok := pt.Metrics[metric]
		if !ok {
			values = append(values, opts.LineData{Name: pt.Name, Value: missing})
			lower = append(lower, opts.LineData{Value: missing})
			upper = append(upper, opts.LineData{Value: missing})
			continue
		}

		values = append(values, opts.LineData{Name: pt.Name, Value: mv.Value})
		if len(mv.Bounds) == 2 {
			banded = true
			lower = append(lower, opts.LineData{Value: mv.Bounds[0]})
			upper = append(upper, opts.LineData{Value: mv.Bounds[1]})
		} else {
			lower = append(lower, opts.LineData{Value: missing})
			upper = append(upper, opts.LineData{Value: missing})
		}
	}

	line.SetXAxis(labels).
		AddSeries(metric, values, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))

	if banded {
		dashed := charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})
		noSymbol := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
		line.AddSeries(metric+" lower", lower, dashed, noSymbol).
			AddSeries(metric+" upper", upper, dashed, noSymbol)
	}

	return line
}
