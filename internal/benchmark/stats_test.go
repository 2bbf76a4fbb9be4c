package benchmark

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStat(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		mean    float64
		sd      float64
	}{
		{name: "single", samples: []float64{4}, mean: 4, sd: 0},
		{name: "constant", samples: []float64{2, 2, 2}, mean: 2, sd: 0},
		// population sd of 2,4,4,4,5,5,7,9 is exactly 2
		{name: "population", samples: []float64{2, 4, 4, 4, 5, 5, 7, 9}, mean: 5, sd: 2},
		{name: "negative", samples: []float64{-1, 1}, mean: 0, sd: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Stat("time", tt.samples)
			require.NoError(t, err)
			assert.Equal(t, "time", st.Name)
			assert.InDelta(t, tt.mean, st.Mean, 1e-9)
			assert.InDelta(t, tt.sd, st.StandardDeviation, 1e-9)
		})
	}
}

func TestStat_Empty(t *testing.T) {
	_, err := Stat("time", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.Contains(t, err.Error(), "time")
}

func TestStat_Properties(t *testing.T) {
	inputs := [][]float64{
		{1e9, 1e9 + 1, 1e9 + 2},
		{0.1, 0.2, 0.3, 0.4},
		{-5, 10, 3.3, 7, 7, 7},
		{math.SmallestNonzeroFloat64, 1},
	}

	for _, xs := range inputs {
		st, err := Stat("m", xs)
		require.NoError(t, err)

		var sum float64
		for _, x := range xs {
			sum += x
		}
		assert.GreaterOrEqual(t, st.StandardDeviation, 0.0)
		assert.InDelta(t, sum/float64(len(xs)), st.Mean, 1e-6)
	}
}

func TestAggregate(t *testing.T) {
	stats, err := Aggregate([]map[string]float64{
		{"time": 1, "ops_per_sec": 100},
		{"time": 3},
		{"time": 2, "mbs_per_sec": 10},
	})
	require.NoError(t, err)
	require.Len(t, stats, 3)

	// sorted key order
	assert.Equal(t, "mbs_per_sec", stats[0].Name)
	assert.Equal(t, "ops_per_sec", stats[1].Name)
	assert.Equal(t, "time", stats[2].Name)

	assert.Equal(t, 10.0, stats[0].Mean)
	assert.Equal(t, 100.0, stats[1].Mean)
	assert.InDelta(t, 2.0, stats[2].Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(2.0/3.0), stats[2].StandardDeviation, 1e-9)
}

func TestAggregate_Empty(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMetricStatBand(t *testing.T) {
	b := MetricStat{Mean: 10, StandardDeviation: 1.5}.Band()
	assert.Equal(t, [2]float64{8.5, 11.5}, b)
}

func TestSummarize(t *testing.T) {
	samples := []float64{5, 1, 3, 2, 4}
	sum, err := Summarize("time", samples, 0.95)
	require.NoError(t, err)

	assert.Equal(t, 3.0, sum.Center)
	assert.LessOrEqual(t, sum.Lo, sum.Center)
	assert.GreaterOrEqual(t, sum.Hi, sum.Center)
	assert.False(t, math.IsInf(sum.Lo, 0))
	assert.False(t, math.IsInf(sum.Hi, 0))
	// input must not be reordered
	assert.Equal(t, []float64{5, 1, 3, 2, 4}, samples)

	_, err = Summarize("time", nil, 0.95)
	assert.ErrorIs(t, err, ErrEmptyInput)
}
