package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDatabase implements Database for pgxpool.Pool.
type PgxDatabase struct {
	pool *pgxpool.Pool
}

// NewPgxDatabase creates a new PgxDatabase.
func NewPgxDatabase(pool *pgxpool.Pool) *PgxDatabase {
	return &PgxDatabase{pool: pool}
}

// QueryContext executes a query with a context.
func (p *PgxDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &PgxRows{rows: rows}, nil
}

// PingContext verifies the connection to the database is alive.
func (p *PgxDatabase) PingContext(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the pool.
func (p *PgxDatabase) Close() error {
	p.pool.Close()
	return nil
}

// PgxRows implements Rows for pgx.Rows.
type PgxRows struct {
	rows              pgx.Rows
	fieldDescriptions []pgconn.FieldDescription
}

// Next prepares the next result row for reading.
func (p *PgxRows) Next() bool { return p.rows.Next() }

// Values returns the decoded values of the current row.
func (p *PgxRows) Values() ([]any, error) { return p.rows.Values() }

// Err returns any error met while iterating.
func (p *PgxRows) Err() error { return p.rows.Err() }

// Close closes the rows iterator.
func (p *PgxRows) Close() error { p.rows.Close(); return nil }

// Columns returns the column names.
func (p *PgxRows) Columns() ([]string, error) {
	if p.fieldDescriptions == nil {
		p.fieldDescriptions = p.rows.FieldDescriptions()
	}
	columns := make([]string, len(p.fieldDescriptions))
	for i, fd := range p.fieldDescriptions {
		columns[i] = fd.Name
	}
	return columns, nil
}

// Assert that PgxDatabase implements the Database interface.
var _ Database = (*PgxDatabase)(nil)
