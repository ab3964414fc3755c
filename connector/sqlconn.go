package connector

import (
	"context"
	"database/sql"

	"github.com/Konsultn-Engineering/valueset/cache"
	"github.com/Konsultn-Engineering/valueset/database"
	"github.com/Konsultn-Engineering/valueset/dialect"
)

// SQLConnection is a Connection over a database/sql pool, shared by the
// providers that register a database/sql driver.
type SQLConnection struct {
	db      *sql.DB
	sdb     *database.SqlDatabase
	stmts   *cache.StatementCache
	dialect dialect.Dialect
}

// OpenSQL opens driverName with dsn, applies the pool settings and verifies the
// connection. cfg.StatementCacheSize enables the prepared statement cache.
func OpenSQL(ctx context.Context, driverName, dsn string, cfg Config, d dialect.Dialect) (*SQLConnection, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	pool := cfg.Pool.WithDefaults()
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.MaxLifetime)
	db.SetConnMaxIdleTime(pool.MaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	conn, err := NewSQLConnection(db, d, cfg.StatementCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return conn, nil
}

// NewSQLConnection wraps an open pool. A positive stmtCacheSize enables the
// prepared statement cache.
func NewSQLConnection(db *sql.DB, d dialect.Dialect, stmtCacheSize int) (*SQLConnection, error) {
	var stmts *cache.StatementCache
	if stmtCacheSize > 0 {
		var err error
		stmts, err = cache.NewStatementCache(stmtCacheSize)
		if err != nil {
			return nil, err
		}
	}
	return &SQLConnection{
		db:      db,
		sdb:     database.NewSqlDatabase(db, stmts),
		stmts:   stmts,
		dialect: d,
	}, nil
}

func (c *SQLConnection) Database() database.Database { return c.sdb }

// DB returns the underlying pool.
func (c *SQLConnection) DB() *sql.DB { return c.db }

func (c *SQLConnection) Dialect() dialect.Dialect { return c.dialect }

func (c *SQLConnection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *SQLConnection) Stats() ConnectionStats {
	stats := StatsFromDB(c.db.Stats())
	if c.stmts != nil {
		stats.PreparedStatements = c.stmts.Len()
	}
	return stats
}

func (c *SQLConnection) Close() error {
	return c.sdb.Close()
}

var _ Connection = (*SQLConnection)(nil)
