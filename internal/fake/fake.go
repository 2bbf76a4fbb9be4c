// Package fake generates synthetic benchmark history for demos and tests.
// Nothing in the live data path imports it; it is reached only through the
// fake source and the fake command.
package fake

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"benchdash/internal/benchmark"
)

// DefaultSteps is the length of a generated history.
const DefaultSteps = 50

const (
	drift       = 1.02
	driftJitter = 0.1   // mean multiplier jitter, uniform in [-0.05, 0.05)
	meanJitter  = 0.005 // additive jitter, uniform in [-0.0025, 0.0025)
	sdJitter    = 0.2   // sd multiplier jitter, uniform in [-0.1, 0.1)
	hashLen     = 40
	hexDigits   = "0123456789abcdef"
)

// Commit is a synthetic commit with its metric statistics.
type Commit struct {
	Hash  string                 `json:"hash"`
	Stats []benchmark.MetricStat `json:"stats"`
}

// Generator walks backwards from a seed commit producing plausible history.
type Generator struct {
	Steps int
	Rand  *rand.Rand
}

// New returns a generator with DefaultSteps. A nil source gets a randomly
// seeded one.
func New(r *rand.Rand) *Generator {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{Steps: DefaultSteps, Rand: r}
}

// NewSeeded returns a generator whose output is reproducible for a seed.
func NewSeeded(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Generate returns Steps commits, oldest first. The last commit is the seed.
func (g *Generator) Generate(seed Commit) []Commit {
	n := g.Steps
	if n <= 0 {
		n = DefaultSteps
	}

	out := make([]Commit, n)
	out[n-1] = Commit{Hash: seed.Hash, Stats: slices.Clone(seed.Stats)}
	for i := n - 2; i >= 0; i-- {
		out[i] = g.previous(out[i+1])
	}
	return out
}

func (g *Generator) previous(c Commit) Commit {
	d1 := (g.Rand.Float64() - 0.5) * meanJitter
	d2 := (g.Rand.Float64() - 0.5) * driftJitter
	d3 := (g.Rand.Float64() - 0.5) * sdJitter

	stats := make([]benchmark.MetricStat, len(c.Stats))
	for i, st := range c.Stats {
		stats[i] = benchmark.MetricStat{
			Name:              st.Name,
			Mean:              st.Mean*(drift+d2) + d1,
			StandardDeviation: st.StandardDeviation * (1 + d3),
		}
	}

	return Commit{Hash: g.hash(), Stats: stats}
}

func (g *Generator) hash() string {
	var sb strings.Builder
	sb.Grow(hashLen)
	for range hashLen {
		sb.WriteByte(hexDigits[g.Rand.IntN(len(hexDigits))])
	}
	return sb.String()
}

// DefaultSeed is used when no real commit is available to seed from.
func DefaultSeed() Commit {
	return Commit{
		Hash: "0000000000000000000000000000000000000000",
		Stats: []benchmark.MetricStat{
			{Name: benchmark.MetricMBsPerSec, Mean: 10, StandardDeviation: 0.5},
			{Name: benchmark.MetricOpsPerSec, Mean: 100, StandardDeviation: 5},
			{Name: benchmark.MetricTime, Mean: 1, StandardDeviation: 0.05},
		},
	}
}

// SeedFromRecords derives a seed from the runs of one real commit.
func SeedFromRecords(records []benchmark.Record) (Commit, error) {
	if len(records) == 0 {
		return Commit{}, fmt.Errorf("seed: %w", benchmark.ErrEmptyInput)
	}

	samples := make([]map[string]float64, 0, len(records))
	for _, r := range records {
		samples = append(samples, r.Metrics)
	}

	stats, err := benchmark.Aggregate(samples)
	if err != nil {
		return Commit{}, fmt.Errorf("seed: %w", err)
	}

	return Commit{Hash: records[0].Commit, Stats: stats}, nil
}

// Records flattens generated commits into records carrying the mean of
// every metric, ordered by Seq.
func Records(name, branch string, commits []Commit) []benchmark.Record {
	out := make([]benchmark.Record, 0, len(commits))
	for i, c := range commits {
		metrics := make(map[string]float64, len(c.Stats))
		for _, st := range c.Stats {
			metrics[st.Name] = st.Mean
		}
		out = append(out, benchmark.Record{
			Name:    name,
			Commit:  c.Hash,
			Branch:  branch,
			Seq:     int64(i + 1),
			Metrics: metrics,
		})
	}
	return out
}
