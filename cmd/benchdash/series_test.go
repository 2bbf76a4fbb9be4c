package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"benchdash/internal/benchmark"
	"benchdash/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesCmd_Table(t *testing.T) {
	withRecords(t, testRecords())

	out, err := executeCommand(rootCmd, "series")
	require.NoError(t, err)
	assert.Contains(t, out, "bench_a")
	assert.Contains(t, out, "bench_b")
	assert.Contains(t, out, "master~4")
	assert.Contains(t, out, "ops_per_sec")
	assert.NotContains(t, out, "pr-1")
}

func TestSeriesCmd_BranchOverlay(t *testing.T) {
	withRecords(t, testRecords())

	out, err := executeCommand(rootCmd, "series", "bench_a", "--branch", "pr-1", "--metric", "time")
	require.NoError(t, err)
	assert.Contains(t, out, "pr-1")
	assert.NotContains(t, out, "bench_b")
	assert.NotContains(t, out, "ops_per_sec")
	// five runs on p1 collapse into one point with a band
	assert.Contains(t, out, "2.02 [")
}

func TestSeriesCmd_JSON(t *testing.T) {
	withRecords(t, testRecords())

	out, err := executeCommand(rootCmd, "series", "--json", "--branch", "pr-1")
	require.NoError(t, err)

	var series []benchmark.Series
	require.NoError(t, json.Unmarshal([]byte(out), &series))
	require.Len(t, series, 2)

	a := series[0]
	assert.Equal(t, "bench_a", a.Name)
	assert.Equal(t, []string{"ops_per_sec", "time"}, a.Metrics)
	require.Len(t, a.Points, 6)
	last := a.Points[5]
	assert.Equal(t, "pr-1", last.Branch)
	assert.Equal(t, 0, last.RelativeCommitIndex)
	assert.Len(t, last.Metrics["time"].Bounds, 2)
	assert.Equal(t, -5, a.Points[0].RelativeCommitIndex)

	assert.Equal(t, "bench_b", series[1].Name)
	assert.Len(t, series[1].Points, 5)
}

func TestSeriesCmd_UnknownBenchmark(t *testing.T) {
	withRecords(t, testRecords())

	_, err := executeCommand(rootCmd, "series", "bench_missing")
	assert.ErrorIs(t, err, benchmark.ErrNoMatch)
}

func TestFormatMetric(t *testing.T) {
	values := map[string]benchmark.MetricValue{
		"time": {Value: 1.5, Bounds: []float64{1.25, 1.75}},
		"ops":  {Value: 100, Bounds: []float64{}},
	}
	assert.Equal(t, "1.5 [1.25, 1.75]", formatMetric(values, "time"))
	assert.Equal(t, "100", formatMetric(values, "ops"))
	assert.Equal(t, "-", formatMetric(values, "mbs_per_sec"))
}

func TestSeriesCmd_Watch(t *testing.T) {
	var fetches int
	old := newSourceFunc
	newSourceFunc = func(source.Config) (source.Source, error) {
		fetches++
		return &source.Static{Records: testRecords()}, nil
	}
	defer func() { newSourceFunc = old }()

	// Polls at 0s and 1s, then the context ends.
	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	seriesCmd.SetContext(ctx)
	defer seriesCmd.SetContext(context.Background())

	out, err := executeCommand(rootCmd, "series", "bench_a", "--watch", "1s")
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
	assert.Equal(t, 2, strings.Count(out, "master~4"))
}
