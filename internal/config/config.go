// Package config loads the service configuration.
//
// Sources are layered, each overriding the previous one: built-in defaults,
// the YAML config file, VALUESET_ environment variables and explicitly set
// command line flags. A .env file is read into the environment first.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/Konsultn-Engineering/valueset/connector"
	"github.com/Konsultn-Engineering/valueset/internal/logging"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: VALUESET_DATABASE__HOST sets database.host.
const EnvPrefix = "VALUESET_"

// Defaults.
const (
	DefaultCatalog            = "queries.yaml"
	DefaultDriver             = "postgres"
	DefaultStatementCacheSize = 256
	DefaultAddr               = ":8000"
	DefaultReadHeaderTimeout  = 10 * time.Second
	DefaultShutdownTimeout    = 5 * time.Second
)

type Config struct {
	Catalog            string           `yaml:"catalog"`
	Driver             string           `yaml:"driver"`
	Database           connector.Config `yaml:"database"`
	StatementCacheSize int              `yaml:"statement_cache_size"`
	Server             ServerConfig     `yaml:"server"`
	Log                LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	Watch             bool          `yaml:"watch"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// flagKeys maps command line flag names onto config keys.
var flagKeys = map[string]string{
	"catalog":    "catalog",
	"driver":     "driver",
	"addr":       "server.addr",
	"watch":      "server.watch",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func defaults() map[string]any {
	return map[string]any{
		"catalog":                    DefaultCatalog,
		"driver":                     DefaultDriver,
		"statement_cache_size":       DefaultStatementCacheSize,
		"server.addr":                DefaultAddr,
		"server.read_header_timeout": DefaultReadHeaderTimeout.String(),
		"server.shutdown_timeout":    DefaultShutdownTimeout.String(),
		"server.watch":               false,
		"log.level":                  "info",
		"log.format":                 logging.FormatText,
	}
}

// LoadDotEnv reads the given files, or .env when none are named, into the
// process environment. Missing files are ignored and variables that are
// already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration. path may be empty to skip the file layer;
// flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Database.StatementCacheSize = cfg.StatementCacheSize

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns VALUESET_DATABASE__POOL__MAX_OPEN into database.pool.max_open.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Catalog) == "" {
		errs = append(errs, errors.New("catalog path is required"))
	}
	if !connector.Registered(c.Driver) {
		errs = append(errs, fmt.Errorf("unknown driver %q (registered: %s)", c.Driver, strings.Join(connector.Providers(), ", ")))
	}
	if c.StatementCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("statement_cache_size must be positive, got %d", c.StatementCacheSize))
	}
	if c.Server.ShutdownTimeout < 0 || c.Server.ReadHeaderTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Logger builds the logger described by the log section.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	return logging.New(c.Log.Level, c.Log.Format, w)
}
