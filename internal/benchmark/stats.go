package benchmark

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"golang.org/x/perf/benchmath"
	"gonum.org/v1/gonum/stat"
)

// MetricStat is the mean and population standard deviation of one metric.
type MetricStat struct {
	Name              string  `json:"name"`
	Mean              float64 `json:"mean"`
	StandardDeviation float64 `json:"standardDeviation"`
}

// Band returns the [mean-sd, mean+sd] interval.
func (s MetricStat) Band() [2]float64 {
	return [2]float64{s.Mean - s.StandardDeviation, s.Mean + s.StandardDeviation}
}

// Stat computes the arithmetic mean and the population (not Bessel-corrected)
// standard deviation of samples.
func Stat(name string, samples []float64) (MetricStat, error) {
	if len(samples) == 0 {
		return MetricStat{}, fmt.Errorf("metric %q: %w", name, ErrEmptyInput)
	}

	mean, variance := stat.PopMeanVariance(samples, nil)
	if variance < 0 {
		variance = 0
	}

	return MetricStat{
		Name:              name,
		Mean:              mean,
		StandardDeviation: math.Sqrt(variance),
	}, nil
}

// Aggregate takes the union of metric keys over all sample maps and computes
// one MetricStat per key from the values present. Keys are returned sorted.
func Aggregate(samples []map[string]float64) ([]MetricStat, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("aggregate: %w", ErrEmptyInput)
	}

	keys := make(map[string]struct{})
	for _, s := range samples {
		for k := range s {
			keys[k] = struct{}{}
		}
	}

	stats := make([]MetricStat, 0, len(keys))
	for _, key := range slices.Sorted(maps.Keys(keys)) {
		values := make([]float64, 0, len(samples))
		for _, s := range samples {
			if v, ok := s[key]; ok {
				values = append(values, v)
			}
		}

		st, err := Stat(key, values)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}

	return stats, nil
}

// Summary is a distribution-free summary of a metric: the median and a
// confidence interval around it.
type Summary struct {
	Name       string  `json:"name"`
	Center     float64 `json:"center"`
	Lo         float64 `json:"lo"`
	Hi         float64 `json:"hi"`
	Confidence float64 `json:"confidence"`
}

// Summarize computes the median of samples and its confidence interval.
// When there are too few samples for the requested confidence the interval
// falls back to the sample range.
func Summarize(name string, samples []float64, confidence float64) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, fmt.Errorf("metric %q: %w", name, ErrEmptyInput)
	}

	// NewSample sorts in place.
	values := slices.Clone(samples)
	sample := benchmath.NewSample(values, &benchmath.DefaultThresholds)
	sum := benchmath.AssumeNothing.Summary(sample, confidence)

	lo, hi := sum.Lo, sum.Hi
	if !finite(lo) || !finite(hi) {
		lo, hi = values[0], values[len(values)-1]
	}

	return Summary{
		Name:       name,
		Center:     sum.Center,
		Lo:         lo,
		Hi:         hi,
		Confidence: confidence,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
