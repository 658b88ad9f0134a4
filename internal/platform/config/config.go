package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
)

type Config struct {
	APIPort string `env:"API_PORT" envDefault:"3000"`
	Debug   bool   `env:"DEBUG" envDefault:"false"`

	HTTP     HTTP
	JWT      JWT
	DocStore DocStore
	Postgres Postgres
	Redis    Redis
	SQLite   SQLite
	LeetCode LeetCode
	Stats    Stats

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://leetcode-stat.netlify.app,http://localhost:5173,http://localhost:3000"`
}

type HTTP struct {
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	// Report generation is sequential with a delay per username, so the
	// handler timeout is generous.
	HandlerTimeout time.Duration `env:"HTTP_HANDLER_TIMEOUT" envDefault:"55s"`
}

type JWT struct {
	Secret     string        `env:"JWT_SECRET" envDefault:"defaultsecret"`
	Expiration time.Duration `env:"JWT_EXPIRATION" envDefault:"72h"`
}

type DocStore struct {
	Driver     string `env:"DOCSTORE_DRIVER" envDefault:"sqlite"`
	Collection string `env:"DOCSTORE_USERS_COLLECTION" envDefault:"users"`
}

type Postgres struct {
	URL             string        `env:"DATABASE_URL"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"user"`
	Password        string        `env:"DB_PASSWORD" envDefault:"password"`
	Name            string        `env:"DB_NAME" envDefault:"lc_stat"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN returns DATABASE_URL when set, otherwise a keyword/value string built
// from the DB_* variables.
func (p Postgres) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return "host=" + p.Host +
		" port=" + p.Port +
		" user=" + p.User +
		" password=" + p.Password +
		" dbname=" + p.Name +
		" sslmode=" + p.SSLMode
}

type Redis struct {
	Addr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"lcstat"`
}

type SQLite struct {
	Path string `env:"SQLITE_PATH" envDefault:"./data/lc_stat.db"`
}

type LeetCode struct {
	GraphQLURL  string        `env:"LEETCODE_GRAPHQL_URL" envDefault:"https://leetcode.com/graphql"`
	HTTPTimeout time.Duration `env:"LEETCODE_HTTP_TIMEOUT" envDefault:"10s"`
}

type Stats struct {
	SubmissionLimit  int           `env:"STATS_SUBMISSION_LIMIT" envDefault:"15"`
	RequestDelay     time.Duration `env:"STATS_REQUEST_DELAY" envDefault:"100ms"`
	DefaultUsernames []string      `env:"DEFAULT_USERNAMES" envSeparator:","`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("env.Parse: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DocStore.Driver {
	case DriverPostgres, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown DOCSTORE_DRIVER %q", c.DocStore.Driver)
	}
	if c.DocStore.Collection == "" {
		return fmt.Errorf("DOCSTORE_USERS_COLLECTION is required")
	}
	if c.Stats.SubmissionLimit <= 0 {
		return fmt.Errorf("STATS_SUBMISSION_LIMIT must be positive, got %d", c.Stats.SubmissionLimit)
	}
	if c.Stats.RequestDelay < 0 {
		return fmt.Errorf("STATS_REQUEST_DELAY must not be negative")
	}
	return nil
}
