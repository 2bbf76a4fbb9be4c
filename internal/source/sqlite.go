package source

import (
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// NewSQLite opens a local copy of the benchmarksrun table.
func NewSQLite(path string) (*SQL, error) {
	db, err := open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return NewSQL(TypeSQLite, db), nil
}
