package source

import (
	"context"
	"fmt"

	"benchdash/internal/benchmark"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// Measurement is the InfluxDB measurement benchmark runs are written to.
// Tags are name, commit and branch; every field is a metric.
const Measurement = "benchmarksrun"

// Influx reads benchmark runs from an InfluxDB v2 bucket.
type Influx struct {
	cfg    InfluxConfig
	client influxdb2.Client
	// DefaultBranch tags points without a branch tag.
	DefaultBranch string
}

func NewInflux(cfg InfluxConfig) *Influx {
	if cfg.Range == "" {
		cfg.Range = "0"
	}
	return &Influx{
		cfg:    cfg,
		client: influxdb2.NewClient(cfg.URL, cfg.Token),
	}
}

func (s *Influx) Name() string { return TypeInfluxDB }

func (s *Influx) query() string {
	return fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: %s)
			|> filter(fn: (r) => r._measurement == "%s")
			|> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
			|> group()
			|> sort(columns: ["_time"])
	`, s.cfg.Bucket, s.cfg.Range, Measurement)
}

func (s *Influx) Fetch(ctx context.Context) ([]benchmark.Record, error) {
	queryAPI := s.client.QueryAPI(s.cfg.Org)
	result, err := queryAPI.Query(ctx, s.query())
	if err != nil {
		return nil, &FetchError{Source: TypeInfluxDB, Err: err}
	}
	defer result.Close()

	var rows []WireRow
	for result.Next() {
		record := result.Record()

		var row WireRow
		row.Name, _ = record.ValueByKey("name").(string)
		row.Commits, _ = record.ValueByKey("commit").(string)
		row.Branch, _ = record.ValueByKey("branch").(string)
		if ts := record.Time(); !ts.IsZero() {
			ts := ts.UTC()
			row.Timestamp = &ts
		}

		row.Time = fieldValue(record.ValueByKey(benchmark.MetricTime))
		row.OpsPerSec = fieldValue(record.ValueByKey(benchmark.MetricOpsPerSec))
		row.MBsPerSec = fieldValue(record.ValueByKey(benchmark.MetricMBsPerSec))
		row.ReadAmplificationCalls = fieldValue(record.ValueByKey(benchmark.MetricReadAmplificationCalls))
		row.ReadAmplificationSize = fieldValue(record.ValueByKey(benchmark.MetricReadAmplificationSize))
		row.WriteAmplificationCalls = fieldValue(record.ValueByKey(benchmark.MetricWriteAmplificationCalls))
		row.WriteAmplificationSize = fieldValue(record.ValueByKey(benchmark.MetricWriteAmplificationSize))

		rows = append(rows, row)
	}
	if result.Err() != nil {
		return nil, &FetchError{Source: TypeInfluxDB, Err: fmt.Errorf("error reading InfluxDB results: %w", result.Err())}
	}

	return Decode(TypeInfluxDB, s.DefaultBranch, rows), nil
}

func (s *Influx) Close() error {
	s.client.Close()
	return nil
}

func fieldValue(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return nil
	}
	return &f
}
