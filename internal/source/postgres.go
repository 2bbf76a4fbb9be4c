package source

import (
	_ "github.com/lib/pq"
)

// NewPostgres connects to the Postgres database behind the Hasura backend.
func NewPostgres(dsn string) (*SQL, error) {
	db, err := open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return NewSQL(TypePostgres, db), nil
}
