package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/Konsultn-Engineering/valueset/connector"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(connector.Config{
		Host:           "db",
		Port:           3306,
		Database:       "omop",
		Username:       "reader",
		Password:       "secret",
		SSLMode:        "disable",
		ConnectTimeout: 5 * time.Second,
		Params:         map[string]string{"charset": "utf8mb4"},
	})

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "reader", parsed.User)
	assert.Equal(t, "secret", parsed.Passwd)
	assert.Equal(t, "db:3306", parsed.Addr)
	assert.Equal(t, "omop", parsed.DBName)
	assert.Equal(t, "false", parsed.TLSConfig)
	assert.Equal(t, 5*time.Second, parsed.Timeout)
	assert.Equal(t, "utf8mb4", parsed.Params["charset"])
}

func TestRegistered(t *testing.T) {
	assert.True(t, connector.Registered("mysql"))
	assert.Equal(t, "?", (&Provider{}).Dialect().Placeholder(3))
}

func TestConnect_RequiresHost(t *testing.T) {
	_, err := (&Provider{}).Connect(context.Background(), connector.Config{})
	assert.ErrorContains(t, err, "host is required")
}
