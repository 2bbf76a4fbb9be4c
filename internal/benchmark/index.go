package benchmark

import (
	"cmp"
	"slices"
)

// BandMode selects how the uncertainty band of a multi-run commit is derived.
type BandMode int

const (
	// BandStddev draws mean ± population standard deviation.
	BandStddev BandMode = iota
	// BandCI draws the 95% confidence interval of the median.
	BandCI
)

const bandConfidence = 0.95

// Index groups a flat record snapshot by benchmark, commit and branch.
type Index struct {
	records       []Record
	names         []string
	commits       []string
	branches      []string
	defaultBranch string
	band          BandMode
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithDefaultBranch sets the baseline branch. Defaults to DefaultBranch.
func WithDefaultBranch(branch string) IndexOption {
	return func(idx *Index) {
		if branch != "" {
			idx.defaultBranch = branch
		}
	}
}

// WithBandMode sets how multi-run commits get their band.
func WithBandMode(mode BandMode) IndexOption {
	return func(idx *Index) {
		idx.band = mode
	}
}

// NewIndex orders records and computes the distinct names, commits and
// branches in first-seen order.
//
// Records are ordered by Seq when any record carries one, otherwise by
// Timestamp when any carries one, otherwise fetch order is kept.
func NewIndex(records []Record, opts ...IndexOption) *Index {
	idx := &Index{defaultBranch: DefaultBranch}
	for _, opt := range opts {
		opt(idx)
	}

	idx.records = orderRecords(records)
	idx.names = distinct(idx.records, func(r Record) string { return r.Name })
	idx.commits = distinct(idx.records, func(r Record) string { return r.Commit })
	idx.branches = distinct(idx.records, func(r Record) string { return r.Branch })

	return idx
}

// orderRecords sorts by Seq when any record has one, else by Timestamp.
// Records missing the key go last in fetch order.
func orderRecords(records []Record) []Record {
	out := slices.Clone(records)

	switch {
	case slices.ContainsFunc(out, func(r Record) bool { return r.Seq != 0 }):
		slices.SortStableFunc(out, func(a, b Record) int {
			return missingLast(a.Seq == 0, b.Seq == 0, func() int { return cmp.Compare(a.Seq, b.Seq) })
		})
	case slices.ContainsFunc(out, func(r Record) bool { return !r.Timestamp.IsZero() }):
		slices.SortStableFunc(out, func(a, b Record) int {
			return missingLast(a.Timestamp.IsZero(), b.Timestamp.IsZero(), func() int { return a.Timestamp.Compare(b.Timestamp) })
		})
	}

	return out
}

func missingLast(aMissing, bMissing bool, compare func() int) int {
	switch {
	case aMissing && bMissing:
		return 0
	case aMissing:
		return 1
	case bMissing:
		return -1
	}
	return compare()
}

func distinct(records []Record, key func(Record) string) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Names returns the distinct benchmark names.
func (idx *Index) Names() []string { return slices.Clone(idx.names) }

// Commits returns the distinct commits.
func (idx *Index) Commits() []string { return slices.Clone(idx.commits) }

// Branches returns the distinct branches.
func (idx *Index) Branches() []string { return slices.Clone(idx.branches) }

// DefaultBranch returns the baseline branch of the index.
func (idx *Index) DefaultBranch() string { return idx.defaultBranch }

// Has reports whether a benchmark name is present.
func (idx *Index) Has(name string) bool { return slices.Contains(idx.names, name) }

// Select returns the records of a benchmark on branch or on the default
// branch. An empty branch selects the default branch only.
func (idx *Index) Select(name, branch string) []Record {
	if branch == "" {
		branch = idx.defaultBranch
	}

	var out []Record
	for _, r := range idx.records {
		if r.Name != name {
			continue
		}
		if r.Branch == branch || r.Branch == idx.defaultBranch {
			out = append(out, r)
		}
	}
	return out
}

// Entries groups the selected records of a benchmark into one entry per
// (branch, commit). A single run is copied as is; several runs are reduced
// to their mean with an uncertainty band.
func (idx *Index) Entries(name, branch string) []Entry {
	type group struct {
		commit, branch string
		runs           []map[string]float64
	}

	var groups []*group
	byKey := make(map[string]*group)

	for _, r := range idx.Select(name, branch) {
		key := r.Branch + "\x00" + r.Commit
		g, ok := byKey[key]
		if !ok {
			g = &group{commit: r.Commit, branch: r.Branch}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.runs = append(g.runs, r.Metrics)
	}

	entries := make([]Entry, 0, len(groups))
	for _, g := range groups {
		entries = append(entries, idx.entry(g.commit, g.branch, g.runs))
	}
	return entries
}

func (idx *Index) entry(commit, branch string, runs []map[string]float64) Entry {
	e := Entry{Commit: commit, Branch: branch, Values: make(map[string]float64)}

	if len(runs) == 1 {
		for k, v := range runs[0] {
			e.Values[k] = v
		}
		return e
	}

	// runs is non-empty here, so Aggregate cannot fail.
	stats, _ := Aggregate(runs)
	e.Stats = make(map[string]MetricStat, len(stats))
	for _, st := range stats {
		e.Values[st.Name] = st.Mean
		e.Stats[st.Name] = st
	}

	if idx.band == BandCI {
		e.Bands = make(map[string][2]float64, len(stats))
		for _, st := range stats {
			values := make([]float64, 0, len(runs))
			for _, run := range runs {
				if v, ok := run[st.Name]; ok {
					values = append(values, v)
				}
			}
			if sum, err := Summarize(st.Name, values, bandConfidence); err == nil {
				e.Bands[st.Name] = [2]float64{sum.Lo, sum.Hi}
			}
		}
	}

	return e
}

// Build returns one series per benchmark, in first-seen order. A benchmark
// with no record on the requested branches gets a series without points.
func (idx *Index) Build(branch string) []Series {
	out := make([]Series, 0, len(idx.names))
	for _, name := range idx.names {
		out = append(out, BuildSeries(name, idx.Entries(name, branch)))
	}
	return out
}

// BuildMap is Build keyed by benchmark name.
func (idx *Index) BuildMap(branch string) map[string]Series {
	out := make(map[string]Series, len(idx.names))
	for _, s := range idx.Build(branch) {
		out[s.Name] = s
	}
	return out
}
