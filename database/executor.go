package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Konsultn-Engineering/valueset/cache"
	"github.com/Konsultn-Engineering/valueset/dialect"
	"github.com/Konsultn-Engineering/valueset/template"
)

// ArgumentCountError is returned when the number of arguments does not match
// the number of placeholders in a template.
type ArgumentCountError struct {
	Want int
	Got  int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("template expects %d arguments, got %d", e.Want, e.Got)
}

// Executor runs {name} templates against a Database, rewriting them into the
// dialect's positional placeholders first.
type Executor struct {
	db      Database
	dialect dialect.Dialect
	queries cache.QueryCache
	timeout time.Duration
}

type ExecutorOption func(*Executor)

// WithQueryCache sets the cache of rewritten templates.
func WithQueryCache(c cache.QueryCache) ExecutorOption {
	return func(e *Executor) { e.queries = c }
}

// WithQueryTimeout bounds every query. Zero means no bound.
func WithQueryTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

func NewExecutor(db Database, d dialect.Dialect, opts ...ExecutorOption) *Executor {
	e := &Executor{db: db, dialect: d}
	for _, opt := range opts {
		opt(e)
	}
	if e.queries == nil {
		e.queries = cache.NewQueryCache()
	}
	return e
}

// Dialect returns the dialect templates are rewritten for.
func (e *Executor) Dialect() dialect.Dialect { return e.dialect }

// Rewrite returns text with its placeholders replaced for the executor's dialect.
func (e *Executor) Rewrite(text string) (string, error) {
	name := e.dialect.Name()
	if q, ok := e.queries.GetSQL(name, text); ok {
		return q.SQL, nil
	}
	sql, err := template.Rewrite(text, e.dialect.Placeholder)
	if err != nil {
		return "", err
	}
	e.queries.SetSQL(&cache.CachedQuery{Source: text, Dialect: name, SQL: sql})
	return sql, nil
}

// QueryRow runs the template with args bound positionally and returns its
// only row, or nil when the query matched nothing.
func (e *Executor) QueryRow(ctx context.Context, text string, args ...any) (*Row, error) {
	placeholders, err := template.Extract(text)
	if err != nil {
		return nil, err
	}
	if len(placeholders) != len(args) {
		return nil, &ArgumentCountError{Want: len(placeholders), Got: len(args)}
	}
	sql, err := e.Rewrite(text)
	if err != nil {
		return nil, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return QueryRow(ctx, e.db, sql, args...)
}

// Ping verifies the database is reachable.
func (e *Executor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}
