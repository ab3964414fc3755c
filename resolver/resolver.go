// Package resolver looks a value up through the catalog's templates. Tables
// are tried in declared order and, within a table, templates in declared
// order. A template runs only when every placeholder it names has a
// parameter, and the first one that returns a row wins.
package resolver

import (
	"context"
	"log/slog"

	"github.com/Konsultn-Engineering/valueset/binding"
	"github.com/Konsultn-Engineering/valueset/catalog"
	"github.com/Konsultn-Engineering/valueset/database"
)

// Executor runs one template with positional arguments and returns at most
// one row. A nil row means the query matched nothing.
type Executor interface {
	QueryRow(ctx context.Context, text string, args ...any) (*database.Row, error)
}

// Engine resolves parameters against a catalog. It holds no per-request state
// and is safe for concurrent use when its Executor is.
type Engine struct {
	cat    *catalog.Catalog
	exec   Executor
	logger *slog.Logger
}

type Option func(*Engine)

// WithLogger sets the logger. Candidates are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(cat *catalog.Catalog, exec Executor, opts ...Option) *Engine {
	e := &Engine{
		cat:    cat,
		exec:   exec,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine resolves against.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Resolve searches every table.
func (e *Engine) Resolve(ctx context.Context, params binding.Params) (*Result, error) {
	return e.search(ctx, e.cat.Tables(), params)
}

// ResolveTables searches only the named tables, still in catalog order. An
// empty ids searches every table.
func (e *Engine) ResolveTables(ctx context.Context, ids []string, params binding.Params) (*Result, error) {
	if len(ids) == 0 {
		return e.Resolve(ctx, params)
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !e.cat.Has(id) {
			return nil, &UnknownTableError{TableID: id}
		}
		want[id] = struct{}{}
	}

	tables := make([]catalog.Table, 0, len(want))
	for _, t := range e.cat.Tables() {
		if _, ok := want[t.ID]; ok {
			tables = append(tables, t)
		}
	}
	return e.search(ctx, tables, params)
}

func (e *Engine) search(ctx context.Context, tables []catalog.Table, params binding.Params) (*Result, error) {
	for _, table := range tables {
		for i, tmpl := range table.Templates {
			args, ok := binding.Bind(tmpl.Placeholders, params)
			if !ok {
				e.logger.Debug("template skipped",
					"table", table.ID, "index", i,
					"missing", binding.Missing(tmpl.Placeholders, params))
				continue
			}

			row, err := e.exec.QueryRow(ctx, tmpl.Text, args...)
			if err != nil {
				return nil, &ExecutionError{TableID: table.ID, Index: i, Err: err}
			}
			if row.Len() == 0 {
				e.logger.Debug("template returned no row", "table", table.ID, "index", i)
				continue
			}

			res := newResult(table.ID, i, tmpl.Labels(), row)
			e.logger.Info("value resolved", "table", table.ID, "index", i, "columns", len(res.Columns))
			return res, nil
		}
	}
	e.logger.Debug("no template matched", "params", params.Keys())
	return &Result{}, nil
}
