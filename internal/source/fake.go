package source

import (
	"context"
	"sync"

	"benchdash/internal/benchmark"
	"benchdash/internal/fake"
)

// Fake serves generated history, one series per configured name.
type Fake struct {
	mu     sync.Mutex // guards gen
	gen    *fake.Generator
	branch string
	names  []string
	seed   fake.Commit
}

func NewFake(gen *fake.Generator, branch string, names ...string) *Fake {
	if len(names) == 0 {
		names = []string{"bench_fake"}
	}
	return &Fake{gen: gen, branch: orDefaultBranch(branch), names: names, seed: fake.DefaultSeed()}
}

// WithSeed sets the newest commit that history is generated backwards from.
func (f *Fake) WithSeed(seed fake.Commit) *Fake {
	f.seed = seed
	return f
}

func (f *Fake) Name() string { return TypeFake }

// Fetch generates one history and reuses its commits for every benchmark,
// so all names share the same commit axis.
func (f *Fake) Fetch(ctx context.Context) ([]benchmark.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	commits := f.gen.Generate(f.seed)
	f.mu.Unlock()

	var out []benchmark.Record
	for _, name := range f.names {
		out = append(out, fake.Records(name, f.branch, commits)...)
	}
	return out, nil
}

func (f *Fake) Close() error { return nil }
