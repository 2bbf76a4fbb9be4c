package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runs(name, branch string, values ...float64) []Record {
	out := make([]Record, 0, len(values))
	for _, v := range values {
		out = append(out, Record{Name: name, Commit: branch + "-c", Branch: branch, Metrics: map[string]float64{"time": v}})
	}
	return out
}

func TestCompare(t *testing.T) {
	records := append(runs("B1", "master", 100, 101, 99, 100, 102, 98, 100, 101),
		runs("B1", "pr-1", 110, 111, 109, 110, 112, 108, 110, 111)...)
	idx := NewIndex(records)

	c, err := idx.Compare("B1", "time", "pr-1")
	require.NoError(t, err)

	assert.Equal(t, "B1", c.Name)
	assert.Equal(t, "master", c.Base)
	assert.Equal(t, "pr-1", c.Head)
	assert.Equal(t, 8, c.BaseN)
	assert.Equal(t, 8, c.HeadN)
	assert.InDelta(t, 100.125, c.BaseMean, 1e-9)
	assert.InDelta(t, 10.0, c.DeltaPct, 0.1)
	assert.True(t, c.Significant)
	assert.Less(t, c.P, c.Alpha)
	assert.Contains(t, c.String(), "B1 time")
}

func TestCompare_NotSignificant(t *testing.T) {
	records := append(runs("B1", "master", 1, 3, 5, 7, 9), runs("B1", "pr-1", 2, 4, 6, 8, 10)...)

	c, err := NewIndex(records).Compare("B1", "time", "pr-1")
	require.NoError(t, err)
	assert.False(t, c.Significant)
}

func TestCompare_NoMatch(t *testing.T) {
	idx := NewIndex(runs("B1", "master", 1, 2))

	_, err := idx.Compare("B1", "time", "pr-1")
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = idx.Compare("B2", "time", "pr-1")
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = idx.Compare("B1", "ops_per_sec", "pr-1")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestCompare_HeadMustDiffer(t *testing.T) {
	idx := NewIndex(runs("B1", "master", 1, 2))

	_, err := idx.Compare("B1", "time", "master")
	assert.Error(t, err)
	_, err = idx.Compare("B1", "time", "")
	assert.Error(t, err)
}
