package mysql

import (
	"context"
	"net"
	"strconv"

	"github.com/Konsultn-Engineering/valueset/connector"
	"github.com/Konsultn-Engineering/valueset/dialect"
	"github.com/go-sql-driver/mysql"
)

const defaultPort = 3306

type Provider struct{}

func init() {
	connector.Register("mysql", &Provider{})
}

// tlsModes maps postgres style ssl modes onto the driver's tls values.
var tlsModes = map[string]string{
	"disable":     "false",
	"require":     "skip-verify",
	"verify-ca":   "true",
	"verify-full": "true",
	"prefer":      "preferred",
}

// BuildDSN returns the go-sql-driver connection string for cfg.
func BuildDSN(cfg connector.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Database
	mc.Timeout = cfg.ConnectTimeout
	if cfg.SSLMode != "" {
		if mode, ok := tlsModes[cfg.SSLMode]; ok {
			mc.TLSConfig = mode
		} else {
			mc.TLSConfig = cfg.SSLMode
		}
	}
	if len(cfg.Params) > 0 {
		mc.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	cfg, err := cfg.WithAddress(defaultPort)
	if err != nil {
		return nil, err
	}
	return connector.OpenSQL(ctx, "mysql", BuildDSN(cfg), cfg, p.Dialect())
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewMySQLDialect()
}
