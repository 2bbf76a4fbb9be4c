package benchmark

import (
	"fmt"

	"golang.org/x/perf/benchmath"
)

// Comparison is the result of comparing a head branch against the baseline
// for one benchmark metric.
type Comparison struct {
	Name     string  `json:"name"`
	Metric   string  `json:"metric"`
	Base     string  `json:"base"`
	Head     string  `json:"head"`
	BaseMean float64 `json:"base_mean"`
	HeadMean float64 `json:"head_mean"`
	BaseN    int     `json:"base_n"`
	HeadN    int     `json:"head_n"`
	// DeltaPct is the relative change of the head mean, in percent.
	DeltaPct    float64 `json:"delta_pct"`
	P           float64 `json:"p"`
	Alpha       float64 `json:"alpha"`
	Significant bool    `json:"significant"`
}

// Compare compares the metric values of benchmark name on head against the
// default branch using a Mann-Whitney U-test.
func (idx *Index) Compare(name, metric, head string) (Comparison, error) {
	if head == "" || head == idx.defaultBranch {
		return Comparison{}, fmt.Errorf("head branch must differ from %q", idx.defaultBranch)
	}

	base := idx.values(name, idx.defaultBranch, metric)
	curr := idx.values(name, head, metric)
	if len(base) == 0 || len(curr) == 0 {
		return Comparison{}, fmt.Errorf("%s/%s on %s vs %s: %w", name, metric, head, idx.defaultBranch, ErrNoMatch)
	}

	baseStat, err := Stat(metric, base)
	if err != nil {
		return Comparison{}, err
	}
	headStat, err := Stat(metric, curr)
	if err != nil {
		return Comparison{}, err
	}

	c := Comparison{
		Name:     name,
		Metric:   metric,
		Base:     idx.defaultBranch,
		Head:     head,
		BaseMean: baseStat.Mean,
		HeadMean: headStat.Mean,
		BaseN:    len(base),
		HeadN:    len(curr),
	}

	if baseStat.Mean != 0 {
		c.DeltaPct = (headStat.Mean - baseStat.Mean) / baseStat.Mean * 100
	}

	// NewSample sorts its argument; base and curr are private copies.
	cmp := benchmath.AssumeNothing.Compare(
		benchmath.NewSample(base, &benchmath.DefaultThresholds),
		benchmath.NewSample(curr, &benchmath.DefaultThresholds),
	)
	c.P = cmp.P
	c.Alpha = cmp.Alpha
	c.Significant = cmp.P < cmp.Alpha

	return c, nil
}

func (idx *Index) values(name, branch, metric string) []float64 {
	var out []float64
	for _, r := range idx.records {
		if r.Name != name || r.Branch != branch {
			continue
		}
		if v, ok := r.Metric(metric); ok {
			out = append(out, v)
		}
	}
	return out
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s: %s %+.2f%% vs %s (p=%.3f)", c.Name, c.Metric, c.Head, c.DeltaPct, c.Base, c.P)
}
