// Package sqlite registers the pure Go SQLite driver as the "sqlite" provider.
// Config.Database is the file path; an empty path or ":memory:" opens a
// private in-memory database on a single connection.
package sqlite

import (
	"context"
	"net/url"

	"github.com/Konsultn-Engineering/valueset/connector"
	"github.com/Konsultn-Engineering/valueset/dialect"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

type Provider struct{}

func init() {
	connector.Register("sqlite", &Provider{})
}

// BuildDSN returns the modernc.org/sqlite connection string for cfg.
func BuildDSN(cfg connector.Config) string {
	path := cfg.Database
	if path == "" {
		path = ":memory:"
	}
	if len(cfg.Params) == 0 {
		return path
	}
	q := url.Values{}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}
	return "file:" + path + "?" + q.Encode()
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	if cfg.Database == "" || cfg.Database == ":memory:" {
		cfg.Pool.MaxOpen = 1
		cfg.Pool.MaxIdle = 1
		cfg.Pool.MaxLifetime = -1
		cfg.Pool.MaxIdleTime = -1
	}
	return connector.OpenSQL(ctx, driverName, BuildDSN(cfg), cfg, p.Dialect())
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewSQLiteDialect()
}
