package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/perf/benchfmt"
)

// GoResult is one line of `go test -bench` output.
type GoResult struct {
	Name        string  `json:"name"`
	Iterations  int64   `json:"iterations"`
	NsPerOp     float64 `json:"ns_per_op"`
	MBPerSec    float64 `json:"mb_per_sec,omitempty"`
	BytesPerOp  int64   `json:"bytes_per_op"`
	AllocsPerOp int64   `json:"allocs_per_op"`
}

// Metrics maps a go benchmark line onto the dashboard metrics. ops_per_sec
// is derived from ns/op; mbs_per_sec is only set when the benchmark reports
// throughput.
func (r GoResult) Metrics() map[string]float64 {
	m := map[string]float64{MetricTime: r.NsPerOp}
	if r.NsPerOp > 0 {
		m[MetricOpsPerSec] = 1e9 / r.NsPerOp
	}
	if r.MBPerSec > 0 {
		m[MetricMBsPerSec] = r.MBPerSec
	}
	return m
}

// GoRecords turns parsed results into records of one commit.
func GoRecords(results []GoResult, commit, branch string, seq int64) []Record {
	out := make([]Record, 0, len(results))
	for _, r := range results {
		out = append(out, Record{
			Name:    r.Name,
			Commit:  commit,
			Branch:  branch,
			Seq:     seq,
			Metrics: r.Metrics(),
		})
	}
	return out
}

// Runner runs go benchmarks for a package pattern.
type Runner interface {
	Run(ctx context.Context, packages ...string) ([]GoResult, error)
}

// GoRunner implements Runner with `go test -bench`.
type GoRunner struct {
	// Bench is the -bench regexp. Defaults to ".".
	Bench string
	// Count is passed as -count when > 1, giving several runs per benchmark.
	Count int
}

func NewGoRunner() *GoRunner {
	return &GoRunner{Bench: "."}
}

func (r *GoRunner) Run(ctx context.Context, packages ...string) ([]GoResult, error) {
	if len(packages) == 0 {
		packages = []string{"./..."}
	}

	bench := r.Bench
	if bench == "" {
		bench = "."
	}

	args := []string{"test", "-bench=" + bench, "-benchmem", "-run=^$"}
	if r.Count > 1 {
		args = append(args, "-count="+strconv.Itoa(r.Count))
	}
	args = append(args, packages...)

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("benchmark execution failed: %w\nOutput:\n%s", err, out.String())
	}

	return ParseOutput(&out)
}

// WriteOutput writes results in the `go test -bench` text format, so saved
// runs can be parsed again by ParseOutput.
func WriteOutput(w io.Writer, results []GoResult) error {
	for _, r := range results {
		line := fmt.Sprintf("%s\t%d\t%s ns/op", r.Name, r.Iterations, strconv.FormatFloat(r.NsPerOp, 'f', -1, 64))
		if r.MBPerSec > 0 {
			line += fmt.Sprintf("\t%s MB/s", strconv.FormatFloat(r.MBPerSec, 'f', -1, 64))
		}
		line += fmt.Sprintf("\t%d B/op\t%d allocs/op\n", r.BytesPerOp, r.AllocsPerOp)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ParseOutput parses standard go benchmark output with benchfmt. Names keep
// their Benchmark prefix and sub-benchmark parts but lose the GOMAXPROCS
// suffix. Results without a time per op and malformed benchmark lines are
// skipped.
func ParseOutput(r io.Reader) ([]GoResult, error) {
	var results []GoResult
	reader := benchfmt.NewReader(r, "")

	for reader.Scan() {
		switch rec := reader.Result().(type) {
		case *benchfmt.SyntaxError:
			slog.Warn("skipping malformed benchmark line", "error", rec)
		case *benchfmt.Result:
			if res, ok := goResult(rec); ok {
				results = append(results, res)
			}
		}
	}

	return results, reader.Err()
}

func goResult(rec *benchfmt.Result) (GoResult, bool) {
	res := GoResult{Name: benchName(rec.Name), Iterations: int64(rec.Iters)}
	var timed bool

	// A zero value is not tidied and keeps its original unit.
	for _, v := range rec.Values {
		switch v.Unit {
		case "ns/op":
			timed = true
			res.NsPerOp = v.Value
		case "MB/s":
			res.MBPerSec = v.Value
		case "sec/op":
			timed = true
			res.NsPerOp = v.Value * 1e9
			if v.OrigUnit == "ns/op" {
				res.NsPerOp = v.OrigValue
			}
		case "B/s":
			res.MBPerSec = v.Value / 1e6
			if v.OrigUnit == "MB/s" {
				res.MBPerSec = v.OrigValue
			}
		case "B/op":
			res.BytesPerOp = int64(v.Value)
		case "allocs/op":
			res.AllocsPerOp = int64(v.Value)
		}
	}

	return res, timed
}

func benchName(n benchfmt.Name) string {
	base, parts := n.Parts()
	var sb strings.Builder
	sb.WriteString("Benchmark")
	sb.Write(base)
	for _, part := range parts {
		if len(part) > 0 && part[0] == '-' {
			continue
		}
		sb.Write(part)
	}
	return sb.String()
}
