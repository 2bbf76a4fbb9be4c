package benchmark

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeries_RelativeIndex(t *testing.T) {
	for _, n := range []int{1, 2, 5, 50} {
		entries := make([]Entry, n)
		for i := range entries {
			entries[i] = Entry{Commit: "c", Values: map[string]float64{"time": float64(i)}}
		}

		s := BuildSeries("bench", entries)
		require.Len(t, s.Points, n)
		assert.Equal(t, -(n - 1), s.Points[0].RelativeCommitIndex)
		assert.Equal(t, 0, s.Points[n-1].RelativeCommitIndex)
		for i := 1; i < n; i++ {
			assert.Equal(t, s.Points[i-1].RelativeCommitIndex+1, s.Points[i].RelativeCommitIndex)
		}
	}
}

func TestBuildSeries_Bounds(t *testing.T) {
	s := BuildSeries("bench", []Entry{
		{
			Commit: "0123456789abcdef",
			Branch: "master",
			Values: map[string]float64{"time": 1.0, "ops_per_sec": 100},
			Stats:  map[string]MetricStat{"time": {Name: "time", Mean: 1.0, StandardDeviation: 0.1}},
		},
	})

	require.Len(t, s.Points, 1)
	p := s.Points[0]
	assert.Equal(t, "01234567", p.Name)
	assert.Equal(t, "0123456789abcdef", p.Commit)
	assert.Equal(t, "master", p.Branch)

	assert.InDeltaSlice(t, []float64{0.9, 1.1}, p.Metrics["time"].Bounds, 1e-9)
	assert.NotNil(t, p.Metrics["ops_per_sec"].Bounds)
	assert.Empty(t, p.Metrics["ops_per_sec"].Bounds)
	assert.Equal(t, []string{"ops_per_sec", "time"}, s.Metrics)
}

func TestBuildSeries_BandsOverrideStats(t *testing.T) {
	s := BuildSeries("bench", []Entry{{
		Commit: "abc",
		Values: map[string]float64{"time": 1},
		Stats:  map[string]MetricStat{"time": {Mean: 1, StandardDeviation: 0.5}},
		Bands:  map[string][2]float64{"time": {0.8, 1.3}},
	}})
	assert.Equal(t, []float64{0.8, 1.3}, s.Points[0].Metrics["time"].Bounds)
}

func TestBuildSeries_StatsWithoutValueIgnored(t *testing.T) {
	s := BuildSeries("bench", []Entry{{
		Commit: "abc",
		Values: map[string]float64{"time": 1},
		Stats:  map[string]MetricStat{"mbs_per_sec": {Mean: 1}},
	}})
	assert.Equal(t, []string{"time"}, s.Metrics)
	assert.NotContains(t, s.Points[0].Metrics, "mbs_per_sec")
}

func TestBuildSeries_EmptyBoundsSerializeAsArray(t *testing.T) {
	s := BuildSeries("bench", []Entry{{Commit: "abc", Values: map[string]float64{"time": 1}}})
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bounds":[]`)
	assert.Contains(t, string(data), `"relCommit":0`)
}

func TestBuildSeries_Empty(t *testing.T) {
	s := BuildSeries("bench", nil)
	assert.Equal(t, "bench", s.Name)
	assert.NotNil(t, s.Points)
	assert.Empty(t, s.Points)
	assert.Empty(t, s.Metrics)
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "abc", ShortCommit("abc"))
	assert.Equal(t, "01234567", ShortCommit("0123456789"))
}

func TestCommitURL(t *testing.T) {
	tests := []struct {
		branch, commit, want string
	}{
		{"cockroachdb/pebble/master", "abc123", "//github.com/cockroachdb/pebble/commit/abc123"},
		{"owner/repo", "ffff", "//github.com/owner/repo/commit/ffff"},
		{"master", "abc123", ""},
		{"/repo/x", "abc123", ""},
		{"owner/repo", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CommitURL(tt.branch, tt.commit), tt.branch)
	}
}

func TestBuildSeries_CommitURL(t *testing.T) {
	s := BuildSeries("bench", []Entry{
		{Commit: "c1", Branch: "cockroachdb/pebble/master", Values: map[string]float64{"time": 1}},
		{Commit: "c2", Branch: "master", Values: map[string]float64{"time": 2}},
	})

	assert.Equal(t, "//github.com/cockroachdb/pebble/commit/c1", s.Points[0].URL)
	assert.Empty(t, s.Points[1].URL)

	data, err := json.Marshal(s.Points)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"url":"//github.com/cockroachdb/pebble/commit/c1"`)
	assert.Equal(t, 1, strings.Count(string(data), `"url"`))
}

func TestSeriesFilter(t *testing.T) {
	s := BuildSeries("bench", []Entry{{
		Commit: "abc",
		Values: map[string]float64{"time": 1, "ops_per_sec": 2, "mbs_per_sec": 3},
	}})

	f := s.Filter("time", "unknown")
	assert.Equal(t, []string{"time"}, f.Metrics)
	assert.Len(t, f.Points[0].Metrics, 1)
	// original untouched
	assert.Len(t, s.Points[0].Metrics, 3)

	assert.Equal(t, s, s.Filter())
}
