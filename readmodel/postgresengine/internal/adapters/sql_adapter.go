package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for the standard library sql.DB.
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new adapter for sql.DB.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Query executes a query and returns wrapped rows.
func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// QueryRow executes a single-row query and returns the wrapped row.
func (s *SQLAdapter) QueryRow(ctx context.Context, query string) DBRow {
	return s.db.QueryRowContext(ctx, query)
}
