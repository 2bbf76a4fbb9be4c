package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"benchdash/internal/benchmark"
)

// GoBench reads saved `go test -bench` output. Each file matching the glob
// is one commit, named <order>-<commit>.<ext> as written by the bench
// command. Files are ordered by name, so the order prefix must sort oldest
// first. A name without a numeric prefix is taken as the commit itself.
type GoBench struct {
	pattern string
	branch  string
}

func NewGoBench(pattern, branch string) *GoBench {
	return &GoBench{pattern: pattern, branch: orDefaultBranch(branch)}
}

func (g *GoBench) Name() string { return TypeGoBench }

func (g *GoBench) Fetch(ctx context.Context) ([]benchmark.Record, error) {
	files, err := filepath.Glob(g.pattern)
	if err != nil {
		return nil, &FetchError{Source: TypeGoBench, Err: err}
	}
	sort.Strings(files)

	var out []benchmark.Record
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, &FetchError{Source: TypeGoBench, Err: err}
		}
		results, err := benchmark.ParseOutput(f)
		f.Close()
		if err != nil {
			return nil, &FetchError{Source: TypeGoBench, Err: fmt.Errorf("%s: %w", path, err)}
		}

		commit := commitFromFile(path)
		out = append(out, benchmark.GoRecords(results, commit, g.branch, int64(i+1))...)
	}
	return out, nil
}

func (g *GoBench) Close() error { return nil }

func commitFromFile(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	prefix, commit, ok := strings.Cut(base, "-")
	if !ok || prefix == "" || commit == "" {
		return base
	}
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return base
		}
	}
	return commit
}
