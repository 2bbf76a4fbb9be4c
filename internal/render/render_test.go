package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"benchdash/internal/benchmark"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeries() []benchmark.Series {
	return []benchmark.Series{
		benchmark.BuildSeries("bench_a", []benchmark.Entry{
			{Commit: "c1aaaaaaaaaa", Branch: "master", Values: map[string]float64{"time": 1.0, "ops_per_sec": 100},
				Stats: map[string]benchmark.MetricStat{"time": {Name: "time", Mean: 1, StandardDeviation: 0.1}}},
			{Commit: "c2bbbbbbbbbb", Branch: "master", Values: map[string]float64{"time": 1.1}},
		}),
		benchmark.BuildSeries("bench_b", []benchmark.Entry{
			{Commit: "c1aaaaaaaaaa", Branch: "master", Values: map[string]float64{"ops_per_sec": 50}},
		}),
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPage("Benchmarks", "").Render(&buf, testSeries()))

	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "echarts")
	assert.Contains(t, out, "bench_a")
	assert.Contains(t, out, "bench_b")
	assert.Contains(t, out, "master~1")
	assert.Contains(t, out, "time lower")
}

func TestHTML_MetricFilter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPage("Pebble", "pr-1").Render(&buf, testSeries(), "ops_per_sec"))

	out := buf.String()
	assert.Contains(t, out, "Pebble")
	assert.Contains(t, out, "master~1")
	assert.NotContains(t, out, "pr-1~1")
	assert.NotContains(t, out, "time lower")
}

func TestHTML_OverlayLabelsUsePointBranch(t *testing.T) {
	series := []benchmark.Series{
		benchmark.BuildSeries("bench_a", []benchmark.Entry{
			{Commit: "c1aaaaaaaaaa", Branch: "master", Values: map[string]float64{"time": 1.0}},
			{Commit: "c2bbbbbbbbbb", Branch: "master", Values: map[string]float64{"time": 1.1}},
			{Commit: "p1cccccccccc", Branch: "pr-1", Values: map[string]float64{"time": 0.9}},
			{Commit: "c3dddddddddd", Values: map[string]float64{"time": 1.2}},
		}),
	}

	var buf bytes.Buffer
	require.NoError(t, NewPage("Overlay", "pr-1").Render(&buf, series, "time"))

	out := buf.String()
	assert.Contains(t, out, "master~3")
	assert.Contains(t, out, "master~2")
	assert.Contains(t, out, "pr-1~1")
	assert.NotContains(t, out, "pr-1~3")
	assert.Contains(t, out, `"pr-1"`)
}

func TestHTML_NothingToDraw(t *testing.T) {
	var buf bytes.Buffer
	page := NewPage("Benchmarks", "")
	err := page.Render(&buf, testSeries(), "mbs_per_sec")
	assert.ErrorIs(t, err, benchmark.ErrNoMatch)

	err = page.Render(&buf, nil)
	assert.ErrorIs(t, err, benchmark.ErrNoMatch)
}

func TestPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "time.png")
	require.NoError(t, PNG(path, testSeries(), "time"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "not a png file")
}

func TestPNG_NoValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.png")
	err := PNG(path, testSeries(), "mbs_per_sec")
	assert.ErrorIs(t, err, benchmark.ErrNoMatch)
	assert.NoFileExists(t, path)
}

func TestMetricXYs(t *testing.T) {
	pts, lo, hi := metricXYs(testSeries()[0], "time")
	require.Len(t, pts, 2)
	assert.Equal(t, -1.0, pts[0].X)
	assert.Equal(t, 1.1, pts[1].Y)
	require.Len(t, lo, 1)
	assert.InDelta(t, 0.9, lo[0].Y, 1e-9)
	assert.InDelta(t, 1.1, hi[0].Y, 1e-9)
}
