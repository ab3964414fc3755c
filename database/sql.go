package database

import (
	"context"
	"database/sql"

	"github.com/Konsultn-Engineering/valueset/cache"
)

// SqlDatabase implements Database for *sql.DB.
type SqlDatabase struct {
	db    *sql.DB
	stmts *cache.StatementCache
}

// NewSqlDatabase creates a new SqlDatabase. stmts may be nil to run every
// query unprepared.
func NewSqlDatabase(db *sql.DB, stmts *cache.StatementCache) *SqlDatabase {
	return &SqlDatabase{db: db, stmts: stmts}
}

// QueryContext executes a query with a context, through a cached prepared
// statement when a statement cache is configured.
func (s *SqlDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if s.stmts == nil {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return &SqlRows{rows: rows}, nil
	}

	stmt, release, err := s.stmts.GetOrPrepare(ctx, s.db, query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		release()
		return nil, err
	}
	return &SqlRows{rows: rows, release: release}, nil
}

// PingContext verifies the connection to the database is alive.
func (s *SqlDatabase) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes cached statements and the database.
func (s *SqlDatabase) Close() error {
	if s.stmts != nil {
		_ = s.stmts.Close()
	}
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *SqlDatabase) DB() *sql.DB { return s.db }

// SqlRows implements Rows for *sql.Rows.
type SqlRows struct {
	rows    *sql.Rows
	buf     scanBuffers
	release func()
}

// Next prepares the next result row for reading.
func (s *SqlRows) Next() bool { return s.rows.Next() }

// Err returns any error met while iterating.
func (s *SqlRows) Err() error { return s.rows.Err() }

// Close closes the rows iterator and gives back its prepared statement.
func (s *SqlRows) Close() error {
	err := s.rows.Close()
	if s.release != nil {
		s.release()
	}
	return err
}

// Columns returns the column names.
func (s *SqlRows) Columns() ([]string, error) { return s.rows.Columns() }

// Values scans the current row into fresh values. Driver byte slices are
// returned as strings.
func (s *SqlRows) Values() ([]any, error) {
	cols, err := s.rows.Columns()
	if err != nil {
		return nil, err
	}
	s.buf.prepare(len(cols))
	if err := s.rows.Scan(s.buf.ptrs...); err != nil {
		return nil, err
	}
	out := make([]any, len(cols))
	for i, v := range s.buf.vals {
		if b, ok := v.([]byte); ok {
			out[i] = string(b)
			continue
		}
		out[i] = v
	}
	return out, nil
}

// Assert that SqlDatabase implements the Database interface.
var _ Database = (*SqlDatabase)(nil)
