package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Konsultn-Engineering/valueset/connector"
	"github.com/Konsultn-Engineering/valueset/database"
	"github.com/Konsultn-Engineering/valueset/dialect"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Provider struct{}

func init() {
	connector.Register("postgres", &Provider{})
}

const defaultPort = 5432

// BuildDSN returns the pgx connection string for cfg. A connect timeout is
// passed in whole seconds, at least one.
func BuildDSN(cfg connector.Config) string {
	b := connector.URLFromConfig("postgres", cfg).
		Param("sslmode", cfg.SSLMode)
	if cfg.ConnectTimeout > 0 {
		b.Param("connect_timeout", strconv.Itoa(max(1, int(cfg.ConnectTimeout/time.Second))))
	}
	return b.Build()
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	cfg, err := cfg.WithAddress(defaultPort)
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("invalid postgres config: %w", err)
	}

	pool := cfg.Pool.WithDefaults()
	poolCfg.MaxConns = int32(pool.MaxOpen)
	poolCfg.MinConns = int32(pool.MaxIdle)
	poolCfg.MaxConnLifetime = pool.MaxLifetime
	poolCfg.MaxConnIdleTime = pool.MaxIdleTime

	pgxPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pgxPool.Ping(ctx); err != nil {
		pgxPool.Close()
		return nil, err
	}

	return &connection{pool: pgxPool, dialect: p.Dialect()}, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

type connection struct {
	pool    *pgxpool.Pool
	dialect dialect.Dialect
}

func (c *connection) Database() database.Database {
	return database.NewPgxDatabase(c.pool)
}

func (c *connection) Dialect() dialect.Dialect {
	return c.dialect
}

func (c *connection) Health(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *connection) Stats() connector.ConnectionStats {
	s := c.pool.Stat()
	return connector.ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}

func (c *connection) Close() error {
	c.pool.Close()
	return nil
}
