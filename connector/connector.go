package connector

import (
	"context"

	"github.com/Konsultn-Engineering/valueset/database"
	"github.com/Konsultn-Engineering/valueset/dialect"
)

// Connection is an open, pooled handle to one database.
type Connection interface {
	Database() database.Database
	Dialect() dialect.Dialect
	Health(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}

type Connector interface {
	Connect(ctx context.Context) (Connection, error)
	ConnectWithRetry(ctx context.Context, opts RetryConfig) (Connection, error)
	Close() error
}
