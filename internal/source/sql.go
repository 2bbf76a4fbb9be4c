package source

import (
	"context"
	"database/sql"
	"fmt"

	"benchdash/internal/benchmark"
)

const selectBenchmarksRun = `SELECT name, commits, branch, time, ops_per_sec, mbs_per_sec, id FROM benchmarksrun ORDER BY id`

// SQL reads the benchmarksrun table from a database/sql handle.
type SQL struct {
	name string
	db   *sql.DB
	// DefaultBranch tags rows with a null branch.
	DefaultBranch string
}

// NewSQL wraps an open handle. Close closes it.
func NewSQL(name string, db *sql.DB) *SQL {
	return &SQL{name: name, db: db}
}

func (s *SQL) Name() string { return s.name }

func (s *SQL) Fetch(ctx context.Context) ([]benchmark.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectBenchmarksRun)
	if err != nil {
		return nil, &FetchError{Source: s.name, Err: fmt.Errorf("query benchmarksrun: %w", err)}
	}
	defer rows.Close()

	var wire []WireRow
	for rows.Next() {
		var (
			row    WireRow
			branch sql.NullString
			t      sql.NullFloat64
			ops    sql.NullFloat64
			mbs    sql.NullFloat64
			id     int64
		)
		if err := rows.Scan(&row.Name, &row.Commits, &branch, &t, &ops, &mbs, &id); err != nil {
			return nil, &FetchError{Source: s.name, Err: fmt.Errorf("scan row: %w", err)}
		}
		row.ID = &id
		row.Branch = branch.String
		row.Time = nullFloat(t)
		row.OpsPerSec = nullFloat(ops)
		row.MBsPerSec = nullFloat(mbs)
		wire = append(wire, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &FetchError{Source: s.name, Err: err}
	}

	return Decode(s.name, s.DefaultBranch, wire), nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
