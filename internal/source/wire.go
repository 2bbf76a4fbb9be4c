package source

import (
	"log/slog"
	"time"

	"benchdash/internal/benchmark"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// WireRow is one row of the benchmarksrun schema as served by the backend.
// The commit column is named "commits" upstream although it holds a single
// hash. Metric columns are nullable; a null metric is left out of the record.
type WireRow struct {
	ID        *int64     `json:"id,omitempty"`
	Name      string     `json:"name" validate:"required"`
	Commits   string     `json:"commits" validate:"required"`
	Branch    string     `json:"branch,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`

	Time                    *float64 `json:"time" validate:"omitempty,gte=0"`
	OpsPerSec               *float64 `json:"ops_per_sec" validate:"omitempty,gte=0"`
	MBsPerSec               *float64 `json:"mbs_per_sec" validate:"omitempty,gte=0"`
	ReadAmplificationCalls  *float64 `json:"read_amplification_calls,omitempty" validate:"omitempty,gte=0"`
	ReadAmplificationSize   *float64 `json:"read_amplification_size,omitempty" validate:"omitempty,gte=0"`
	WriteAmplificationCalls *float64 `json:"write_amplification_calls,omitempty" validate:"omitempty,gte=0"`
	WriteAmplificationSize  *float64 `json:"write_amplification_size,omitempty" validate:"omitempty,gte=0"`
}

// Record converts a row. A row without a branch is tagged defaultBranch,
// or benchmark.DefaultBranch when that is empty too.
func (w WireRow) Record(defaultBranch string) benchmark.Record {
	r := benchmark.Record{
		Name:    w.Name,
		Commit:  w.Commits,
		Branch:  w.Branch,
		Metrics: make(map[string]float64),
	}
	if r.Branch == "" {
		r.Branch = orDefaultBranch(defaultBranch)
	}
	if w.ID != nil {
		r.Seq = *w.ID
	}
	if w.Timestamp != nil {
		r.Timestamp = *w.Timestamp
	}

	for name, v := range map[string]*float64{
		benchmark.MetricTime:                    w.Time,
		benchmark.MetricOpsPerSec:               w.OpsPerSec,
		benchmark.MetricMBsPerSec:               w.MBsPerSec,
		benchmark.MetricReadAmplificationCalls:  w.ReadAmplificationCalls,
		benchmark.MetricReadAmplificationSize:   w.ReadAmplificationSize,
		benchmark.MetricWriteAmplificationCalls: w.WriteAmplificationCalls,
		benchmark.MetricWriteAmplificationSize:  w.WriteAmplificationSize,
	} {
		if v != nil {
			r.Metrics[name] = *v
		}
	}

	return r
}

// Decode validates rows and converts the valid ones. Invalid rows are
// dropped with a warning.
func Decode(source, defaultBranch string, rows []WireRow) []benchmark.Record {
	out := make([]benchmark.Record, 0, len(rows))
	for i, row := range rows {
		if err := validate.Struct(row); err != nil {
			slog.Warn("dropping invalid benchmark row", "source", source, "index", i, "error", err)
			continue
		}
		out = append(out, row.Record(defaultBranch))
	}
	return out
}

// RowFromRecord is the inverse of WireRow.Record. Metrics outside the
// benchmarksrun columns are dropped.
func RowFromRecord(r benchmark.Record) WireRow {
	row := WireRow{Name: r.Name, Commits: r.Commit, Branch: r.Branch}
	if r.Seq != 0 {
		seq := r.Seq
		row.ID = &seq
	}
	if !r.Timestamp.IsZero() {
		ts := r.Timestamp
		row.Timestamp = &ts
	}

	for name, dst := range map[string]**float64{
		benchmark.MetricTime:                    &row.Time,
		benchmark.MetricOpsPerSec:               &row.OpsPerSec,
		benchmark.MetricMBsPerSec:               &row.MBsPerSec,
		benchmark.MetricReadAmplificationCalls:  &row.ReadAmplificationCalls,
		benchmark.MetricReadAmplificationSize:   &row.ReadAmplificationSize,
		benchmark.MetricWriteAmplificationCalls: &row.WriteAmplificationCalls,
		benchmark.MetricWriteAmplificationSize:  &row.WriteAmplificationSize,
	} {
		if v, ok := r.Metrics[name]; ok {
			*dst = &v
		}
	}
	return row
}

// Rows converts records for export.
func Rows(records []benchmark.Record) []WireRow {
	out := make([]WireRow, 0, len(records))
	for _, r := range records {
		out = append(out, RowFromRecord(r))
	}
	return out
}
