package connector

import (
	"fmt"
	"time"
)

// Config represents database connection configuration.
type Config struct {
	Host           string            `json:"host" yaml:"host"`
	Port           int               `json:"port" yaml:"port"`
	Database       string            `json:"database" yaml:"database"`
	Username       string            `json:"username" yaml:"username"`
	Password       string            `json:"password" yaml:"password"`
	SSLMode        string            `json:"ssl_mode" yaml:"ssl_mode"`
	Params         map[string]string `json:"params" yaml:"params"`
	Pool           PoolConfig        `json:"pool" yaml:"pool"`
	ConnectTimeout time.Duration     `json:"connect_timeout" yaml:"connect_timeout"`
	QueryTimeout   time.Duration     `json:"query_timeout" yaml:"query_timeout"`
	Retry          *RetryConfig      `json:"retry,omitempty" yaml:"retry,omitempty"`

	// StatementCacheSize bounds the prepared statements kept per connection
	// by database/sql backed providers. Zero disables the cache.
	StatementCacheSize int `json:"-" yaml:"-"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `json:"max_open" yaml:"max_open"`
	MaxIdle     int           `json:"max_idle" yaml:"max_idle"`
	MaxLifetime time.Duration `json:"max_lifetime" yaml:"max_lifetime"`
	MaxIdleTime time.Duration `json:"max_idle_time" yaml:"max_idle_time"`
}

// RetryConfig defines connection retry behavior.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay"`
}

// WithDefaults returns a copy of the pool settings with unset values filled in.
func (p PoolConfig) WithDefaults() PoolConfig {
	if p.MaxOpen <= 0 {
		p.MaxOpen = 10
	}
	if p.MaxIdle < 0 {
		p.MaxIdle = 5
	}
	if p.MaxIdle > p.MaxOpen {
		p.MaxIdle = p.MaxOpen
	}
	if p.MaxLifetime == 0 {
		p.MaxLifetime = time.Hour
	}
	if p.MaxIdleTime == 0 {
		p.MaxIdleTime = 30 * time.Minute
	}
	return p
}

// Validate checks the settings that do not depend on the driver.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Pool.MaxOpen < 0 {
		return fmt.Errorf("pool.max_open must not be negative")
	}
	if c.ConnectTimeout < 0 || c.QueryTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.StatementCacheSize < 0 {
		return fmt.Errorf("statement cache size must not be negative")
	}
	if c.Retry != nil && c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	return nil
}

// WithAddress returns a copy of c for a network driver: a zero port becomes
// defaultPort, and a host is required.
func (c Config) WithAddress(defaultPort int) (Config, error) {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Host == "" {
		return c, fmt.Errorf("host is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return c, fmt.Errorf("invalid port: %d", c.Port)
	}
	return c, nil
}
