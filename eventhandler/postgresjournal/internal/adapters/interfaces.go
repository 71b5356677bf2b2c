package adapters

import "context"

// DBAdapter is the database surface the journal needs.
type DBAdapter interface {
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Ping(ctx context.Context) error
}

type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type DBResult interface {
	RowsAffected() (int64, error)
}
