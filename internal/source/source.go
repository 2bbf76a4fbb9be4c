// Package source fetches benchmark records from the backends the dashboard
// can read from. Every source returns a fully materialized, validated
// snapshot; none of them writes.
package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"benchdash/internal/benchmark"
	"benchdash/internal/fake"
)

// Source produces one snapshot of benchmark records per Fetch.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]benchmark.Record, error)
	Close() error
}

// Source types accepted by New.
const (
	TypeGraphQL  = "graphql"
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
	TypeInfluxDB = "influxdb"
	TypeFile     = "file"
	TypeGoBench  = "gobench"
	TypeFake     = "fake"
)

// Types lists every supported source type.
var Types = []string{TypeGraphQL, TypePostgres, TypeSQLite, TypeInfluxDB, TypeFile, TypeGoBench, TypeFake}

// DefaultGraphQLEndpoint is where the Hasura backend listens by default.
const DefaultGraphQLEndpoint = "http://localhost:8080/v1/graphql"

// Config selects and configures a source.
type Config struct {
	Type     string
	Endpoint string // graphql
	DSN      string // postgres
	Path     string // sqlite database, file export, gobench glob
	Timeout  time.Duration
	// DefaultBranch tags rows that carry no branch. Empty means
	// benchmark.DefaultBranch.
	DefaultBranch string
	Influx        InfluxConfig
	Fake          FakeConfig
}

// InfluxConfig configures the influxdb source.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	Range  string
}

// FakeConfig configures the fake source.
type FakeConfig struct {
	Steps  int
	Names  []string
	Branch string
	Seed   uint64
}

// FetchError reports a failed fetch from a backend.
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch failed (status %d): %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s fetch failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// New creates the source described by cfg.
func New(cfg Config) (Source, error) {
	branch := orDefaultBranch(cfg.DefaultBranch)

	switch strings.ToLower(cfg.Type) {
	case TypeGraphQL, "":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = DefaultGraphQLEndpoint
		}
		g := NewGraphQL(endpoint, cfg.Timeout)
		g.DefaultBranch = branch
		return g, nil
	case TypePostgres, "postgresql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres connection string is required")
		}
		s, err := NewPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		s.DefaultBranch = branch
		return s, nil
	case TypeSQLite, "sqlite3":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite database path is required")
		}
		s, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		s.DefaultBranch = branch
		return s, nil
	case TypeInfluxDB, "influx":
		if cfg.Influx.URL == "" || cfg.Influx.Bucket == "" {
			return nil, fmt.Errorf("influxdb url and bucket are required")
		}
		s := NewInflux(cfg.Influx)
		s.DefaultBranch = branch
		return s, nil
	case TypeFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file path is required")
		}
		f := NewFile(cfg.Path)
		f.DefaultBranch = branch
		return f, nil
	case TypeGoBench:
		if cfg.Path == "" {
			return nil, fmt.Errorf("gobench path pattern is required")
		}
		return NewGoBench(cfg.Path, branch), nil
	case TypeFake:
		g := fake.NewSeeded(cfg.Fake.Seed)
		if cfg.Fake.Seed == 0 {
			g = fake.New(nil)
		}
		if cfg.Fake.Steps > 0 {
			g.Steps = cfg.Fake.Steps
		}
		fakeBranch := cfg.Fake.Branch
		if fakeBranch == "" {
			fakeBranch = branch
		}
		return NewFake(g, fakeBranch, cfg.Fake.Names...), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Type)
	}
}

func orDefaultBranch(branch string) string {
	if branch == "" {
		return benchmark.DefaultBranch
	}
	return branch
}

// Static serves a fixed record set.
type Static struct {
	Records []benchmark.Record
	Err     error
}

func (s *Static) Name() string { return "static" }

func (s *Static) Fetch(context.Context) ([]benchmark.Record, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]benchmark.Record, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *Static) Close() error { return nil }
