package benchmark

import (
	"maps"
	"slices"
	"strings"
)

// ShortCommitLen is the number of hash characters used for display.
const ShortCommitLen = 8

// MetricValue is a plotted value with an optional uncertainty band.
// Bounds is either empty or [lower, upper].
type MetricValue struct {
	Value  float64   `json:"value"`
	Bounds []float64 `json:"bounds"`
}

// ChartPoint is one commit of a benchmark series.
type ChartPoint struct {
	Name                string                 `json:"name"`
	Commit              string                 `json:"commit"`
	Branch              string                 `json:"branch"`
	RelativeCommitIndex int                    `json:"relCommit"`
	URL                 string                 `json:"url,omitempty"` // GitHub commit link, if the branch is owner/repo
	Metrics             map[string]MetricValue `json:"metrics"`
}

// Series is the chart data of one benchmark, oldest commit first.
type Series struct {
	Name    string       `json:"name"`
	Metrics []string     `json:"metrics"`
	Points  []ChartPoint `json:"points"`
}

// Entry is the input of BuildSeries for one commit.
type Entry struct {
	Commit string
	Branch string
	Values map[string]float64
	// Stats, when present for a metric, provides a mean±sd band.
	Stats map[string]MetricStat
	// Bands overrides Stats for the metrics it carries.
	Bands map[string][2]float64
}

// ShortCommit returns the display form of a commit hash.
func ShortCommit(commit string) string {
	if len(commit) > ShortCommitLen {
		return commit[:ShortCommitLen]
	}
	return commit
}

// CommitURL links a commit on GitHub. The branch must be qualified as
// owner/repo[/...]; anything shorter yields an empty URL.
func CommitURL(branch, commit string) string {
	parts := strings.Split(branch, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" || commit == "" {
		return ""
	}
	return "//github.com/" + parts[0] + "/" + parts[1] + "/commit/" + commit
}

// BuildSeries converts entries ordered oldest first into a Series. The last
// entry gets relative index 0, the first -(len-1).
func BuildSeries(name string, entries []Entry) Series {
	n := len(entries)
	declared := make(map[string]struct{})
	points := make([]ChartPoint, 0, n)

	for i, e := range entries {
		p := ChartPoint{
			Name:                ShortCommit(e.Commit),
			Commit:              e.Commit,
			Branch:              e.Branch,
			RelativeCommitIndex: i - n + 1,
			URL:                 CommitURL(e.Branch, e.Commit),
			Metrics:             make(map[string]MetricValue, len(e.Values)),
		}

		for metric, v := range e.Values {
			declared[metric] = struct{}{}
			mv := MetricValue{Value: v, Bounds: []float64{}}

			if b, ok := e.Bands[metric]; ok {
				mv.Bounds = []float64{b[0], b[1]}
			} else if st, ok := e.Stats[metric]; ok {
				b := st.Band()
				mv.Bounds = []float64{b[0], b[1]}
			}

			p.Metrics[metric] = mv
		}

		points = append(points, p)
	}

	return Series{
		Name:    name,
		Metrics: slices.Sorted(maps.Keys(declared)),
		Points:  points,
	}
}

// Filter returns a copy of the series restricted to the given metrics. An
// empty list keeps everything.
func (s Series) Filter(metrics ...string) Series {
	if len(metrics) == 0 {
		return s
	}

	keep := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		keep[m] = struct{}{}
	}

	out := Series{Name: s.Name, Metrics: []string{}, Points: make([]ChartPoint, 0, len(s.Points))}
	for _, m := range s.Metrics {
		if _, ok := keep[m]; ok {
			out.Metrics = append(out.Metrics, m)
		}
	}

	for _, p := range s.Points {
		fp := p
		fp.Metrics = make(map[string]MetricValue, len(metrics))
		for m, v := range p.Metrics {
			if _, ok := keep[m]; ok {
				fp.Metrics[m] = v
			}
		}
		out.Points = append(out.Points, fp)
	}

	return out
}
