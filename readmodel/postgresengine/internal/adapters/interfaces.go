package adapters

import "context"

// DBAdapter defines the interface for database operations needed by the document store.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	QueryRow(ctx context.Context, query string) DBRow
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// DBRow defines the interface for a single-row query result.
type DBRow interface {
	Scan(dest ...any) error
}
