package database

import (
	"context"
	"errors"
	"fmt"
)

// ErrMultipleRows is matched by every MultipleRowsError.
var ErrMultipleRows = errors.New("query returned more than one row")

type Database interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	PingContext(ctx context.Context) error
	Close() error
}

type Rows interface {
	Next() bool
	Values() ([]any, error)
	Columns() ([]string, error)
	Err() error
	Close() error
}

// Row is a single result row. Columns and Values have the same length.
type Row struct {
	Columns []string
	Values  []any
}

// Len returns the number of values in the row.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Values)
}

// MultipleRowsError is returned when a single-row query yields a second row.
type MultipleRowsError struct {
	Query string
}

func (e *MultipleRowsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMultipleRows, e.Query)
}

func (e *MultipleRowsError) Is(target error) bool {
	return target == ErrMultipleRows
}

// QueryRow runs query and returns its only row, or nil when there is none.
func QueryRow(ctx context.Context, db Database, query string, args ...any) (*Row, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		return nil, nil
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	if rows.Next() {
		return nil, &MultipleRowsError{Query: query}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return &Row{Columns: columns, Values: values}, nil
}
