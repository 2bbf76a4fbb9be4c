package benchmark

import (
	"errors"
	"maps"
	"time"
)

// DefaultBranch is the baseline branch shown next to every other branch.
const DefaultBranch = "master"

// Metric identifiers as they appear in the benchmarksrun schema.
const (
	MetricTime                    = "time"
	MetricOpsPerSec               = "ops_per_sec"
	MetricMBsPerSec               = "mbs_per_sec"
	MetricReadAmplificationCalls  = "read_amplification_calls"
	MetricReadAmplificationSize   = "read_amplification_size"
	MetricWriteAmplificationCalls = "write_amplification_calls"
	MetricWriteAmplificationSize  = "write_amplification_size"
)

var (
	// ErrEmptyInput is returned when statistics are requested over zero samples.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoMatch is returned when no record matches a benchmark/branch lookup.
	ErrNoMatch = errors.New("no matching records")
)

// Record is one measurement row of a benchmark at a commit.
type Record struct {
	Name   string `json:"name"`
	Commit string `json:"commit"`
	Branch string `json:"branch"`
	// Seq orders records when the backend provides one. Zero means unknown.
	Seq       int64              `json:"seq,omitempty"`
	Timestamp time.Time          `json:"timestamp,omitzero"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Metric returns the value of a metric and whether the record carries it.
func (r Record) Metric(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}

// Clone returns a copy that does not share the metrics map.
func (r Record) Clone() Record {
	r.Metrics = maps.Clone(r.Metrics)
	return r
}
