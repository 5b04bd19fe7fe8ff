package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Store drivers understood by infra.OpenStore.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

const (
	defaultAppName        = "EventLedger"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultStoreDriver    = DriverFile
	defaultDataDir        = "data"
	defaultSQLitePath     = "data/ledger.db"
	defaultCurrency       = "USD"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour

	// FileEnvVar names an optional YAML file whose values sit between the
	// built-in defaults and the environment.
	FileEnvVar = "LEDGER_CONFIG_FILE"
)

// Config captures application runtime configuration.
type Config struct {
	AppName        string        `yaml:"app_name"        env:"APP_NAME"`
	AppEnv         string        `yaml:"app_env"         env:"APP_ENV"`
	Port           string        `yaml:"port"            env:"PORT"`
	LogLevel       string        `yaml:"log_level"       env:"LOG_LEVEL"`
	StoreDriver    string        `yaml:"store"           env:"LEDGER_STORE"`
	DataDir        string        `yaml:"data_dir"        env:"LEDGER_DATA_DIR"`
	SQLitePath     string        `yaml:"sqlite_path"     env:"LEDGER_SQLITE_PATH"`
	DatabaseURL    string        `yaml:"database_url"    env:"DATABASE_URL"`
	RedisURL       string        `yaml:"redis_url"       env:"REDIS_URL"`
	Currency       string        `yaml:"currency"        env:"LEDGER_CURRENCY"`
	APITokenHash   string        `yaml:"api_token_hash"  env:"LEDGER_API_TOKEN_HASH"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"IDEMPOTENCY_TTL"`
	ShutdownPeriod time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// WriteRateLimit caps credits and debits per account per minute when
	// Redis is configured. Zero disables it.
	WriteRateLimit int `yaml:"write_rate_limit" env:"LEDGER_WRITE_RATE_LIMIT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AppName:        defaultAppName,
		AppEnv:         defaultAppEnv,
		Port:           defaultPort,
		LogLevel:       defaultLogLevel,
		StoreDriver:    defaultStoreDriver,
		DataDir:        defaultDataDir,
		SQLitePath:     defaultSQLitePath,
		Currency:       defaultCurrency,
		IdempotencyTTL: defaultIdempotencyTTL,
		ShutdownPeriod: defaultShutdownDelay,
	}
}

// Load reads configuration from the optional file named by LEDGER_CONFIG_FILE
// and then from environment variables, which take precedence.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnvVar); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks that the settings required by the selected store driver
// are present.
func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverFile:
		if c.DataDir == "" {
			errs = append(errs, errors.New("LEDGER_DATA_DIR must be set for the file store"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("LEDGER_SQLITE_PATH must be set for the sqlite store"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL must be set for the postgres store"))
		}
	case DriverRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL must be set for the redis store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.StoreDriver))
	}
	if c.Currency == "" {
		errs = append(errs, errors.New("LEDGER_CURRENCY must not be empty"))
	}
	if c.ShutdownPeriod <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.WriteRateLimit < 0 {
		errs = append(errs, errors.New("LEDGER_WRITE_RATE_LIMIT must not be negative"))
	}
	if c.IdempotencyTTL < 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}
