package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"benchdash/internal/benchmark"
)

// File reads a JSON export. Three shapes are accepted: a flat array of
// benchmarksrun rows, a GraphQL response body ({"data":{"benchmarksrun":[...]}}),
// and the repository/commit/run tree used by the mock backend.
type File struct {
	path string
	// DefaultBranch tags rows without a branch.
	DefaultBranch string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return TypeFile }

func (f *File) Fetch(ctx context.Context) ([]benchmark.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, &FetchError{Source: TypeFile, Err: err}
	}

	records, err := ParseJSON(data, f.DefaultBranch)
	if err != nil {
		return nil, &FetchError{Source: TypeFile, Err: fmt.Errorf("%s: %w", f.path, err)}
	}
	return records, nil
}

func (f *File) Close() error { return nil }

type mockRepository struct {
	Name    string       `json:"name"`
	Commits []mockCommit `json:"commits"`
}

type mockCommit struct {
	Hash    string `json:"hash" validate:"required"`
	Results []struct {
		Results map[string]map[string]float64 `json:"results"`
	} `json:"results"`
}

// ParseJSON decodes any of the export shapes File accepts. Rows without a
// branch, and every row of the repository tree, are tagged defaultBranch.
func ParseJSON(data []byte, defaultBranch string) ([]benchmark.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '{' {
		var resp graphQLResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return Decode(TypeFile, defaultBranch, resp.Data.BenchmarksRun), nil
	}

	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	if len(probe) > 0 && bytes.HasPrefix(bytes.TrimSpace(probe[0]["commits"]), []byte("[")) {
		var repos []mockRepository
		if err := json.Unmarshal(data, &repos); err != nil {
			return nil, fmt.Errorf("decode repositories: %w", err)
		}
		return flattenRepositories(repos, orDefaultBranch(defaultBranch)), nil
	}

	var rows []WireRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return Decode(TypeFile, defaultBranch, rows), nil
}

// flattenRepositories turns every run of every commit into one record per
// benchmark. Commits are listed oldest first, so their position is the Seq.
func flattenRepositories(repos []mockRepository, branch string) []benchmark.Record {
	var out []benchmark.Record
	var seq int64
	for _, repo := range repos {
		for _, c := range repo.Commits {
			seq++
			if err := validate.Struct(c); err != nil {
				slog.Warn("dropping invalid commit", "source", TypeFile, "repository", repo.Name, "error", err)
				continue
			}
			for _, run := range c.Results {
				for name, metrics := range run.Results {
					if name == "" {
						continue
					}
					m := make(map[string]float64, len(metrics))
					for k, v := range metrics {
						m[k] = v
					}
					out = append(out, benchmark.Record{
						Name:    name,
						Commit:  c.Hash,
						Branch:  branch,
						Seq:     seq,
						Metrics: m,
					})
				}
			}
		}
	}
	return out
}
