package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/postgres"
	"github.com/lifecoach/std/v1/sqlite"
)

// EnvPrefix is the prefix of every environment override, e.g.
// COACH_ENGINE or COACH_SQLITE_SQLITE_PATH. The unprefixed DATABASE_URL and
// SQLITE_PATH are honoured as well.
const EnvPrefix = "COACH"

// Config selects the storage engine and carries the settings of both.
type Config struct {
	// Engine is "sqlite" or "postgres". When empty, postgres is chosen if a
	// PostgreSQL URL or host is configured and sqlite otherwise.
	Engine string `yaml:"engine"`

	// AutoMigrate runs schema bootstrap and migrations when the fx
	// application starts.
	AutoMigrate bool `yaml:"auto_migrate" split_words:"true"`

	SQLite   sqlite.Config   `yaml:"sqlite"`
	Postgres postgres.Config `yaml:"postgres"`
}

// SQLiteConfig returns a Config for the embedded engine.
func SQLiteConfig(cfg sqlite.Config) Config {
	return Config{Engine: string(database.EngineSQLite), SQLite: cfg}
}

// PostgresConfig returns a Config for the networked engine.
func PostgresConfig(cfg postgres.Config) Config {
	return Config{Engine: string(database.EnginePostgres), Postgres: cfg}
}

// LoadConfig reads path as YAML when it is not empty, then applies
// environment overrides. A missing file is an error; an empty path means
// environment and defaults only.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse yaml %q: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.resolveEngine(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EngineName returns the selected engine after defaulting.
func (c Config) EngineName() database.Engine {
	cp := c
	if err := cp.resolveEngine(); err != nil {
		return database.Engine(c.Engine)
	}
	return database.Engine(cp.Engine)
}

func (c *Config) resolveEngine() error {
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	switch c.Engine {
	case "":
		if c.Postgres.URL != "" || c.Postgres.Connection.Host != "" {
			c.Engine = string(database.EnginePostgres)
		} else {
			c.Engine = string(database.EngineSQLite)
		}
		return nil
	case string(database.EngineSQLite), string(database.EnginePostgres):
		return nil
	case "postgresql", "pg":
		c.Engine = string(database.EnginePostgres)
		return nil
	}
	return fmt.Errorf("%w: %q (must be 'sqlite' or 'postgres')", ErrUnsupportedEngine, c.Engine)
}

// ErrUnsupportedEngine is returned for an unknown engine name.
var ErrUnsupportedEngine = errors.New("unsupported storage engine")
