package postgres

import (
	"fmt"
	"strings"
	"time"
)

// Config defines the configuration for the networked PostgreSQL engine.
type Config struct {
	// URL is a postgres:// URL or libpq keyword/value string. When set it
	// takes precedence over Connection.
	URL string `yaml:"url" envconfig:"DATABASE_URL"`

	// Connection holds discrete connection parameters used when URL is empty.
	Connection Connection `yaml:"connection"`

	// ConnectionDetails tunes the connection pool.
	ConnectionDetails ConnectionDetails `yaml:"connection_details"`
}

// Connection contains the parameters needed to reach the server.
type Connection struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DbName   string `yaml:"db_name"`
	// SSLMode is passed through as sslmode. Default: "disable"
	SSLMode string `yaml:"ssl_mode"`
}

// ConnectionDetails contains pool settings. Zero values select the defaults.
type ConnectionDetails struct {
	// MaxOpenConns is the pool size. Default: 50
	MaxOpenConns int `yaml:"max_open_conns"`
	// MinConns is the number of idle connections kept warm. Default: 0
	MinConns int `yaml:"min_conns"`
	// ConnMaxLifetime recycles connections older than this. Default: 1 minute
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	// ConnMaxIdleTime closes connections idle for longer than this. Default: 5 minutes
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	// HealthCheckInterval is how often MonitorConnection pings the server. Default: 10 seconds
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
}

const (
	DefaultPort                = "5432"
	DefaultSSLMode             = "disable"
	DefaultMaxOpenConns        = 50
	DefaultConnMaxLifetime     = time.Minute
	DefaultConnMaxIdleTime     = 5 * time.Minute
	DefaultHealthCheckInterval = 10 * time.Second
)

func (c Config) withDefaults() Config {
	if c.Connection.Port == "" {
		c.Connection.Port = DefaultPort
	}
	if c.Connection.SSLMode == "" {
		c.Connection.SSLMode = DefaultSSLMode
	}
	d := &c.ConnectionDetails
	if d.MaxOpenConns <= 0 {
		d.MaxOpenConns = DefaultMaxOpenConns
	}
	if d.MinConns < 0 {
		d.MinConns = 0
	}
	if d.ConnMaxLifetime <= 0 {
		d.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	if d.ConnMaxIdleTime <= 0 {
		d.ConnMaxIdleTime = DefaultConnMaxIdleTime
	}
	if d.HealthCheckInterval <= 0 {
		d.HealthCheckInterval = DefaultHealthCheckInterval
	}
	return c
}

// ConnString returns the connection string handed to pgx.
func (c Config) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	c = c.withDefaults()
	conn := c.Connection
	parts := []string{
		"host=" + quoteValue(conn.Host),
		"port=" + quoteValue(conn.Port),
		"user=" + quoteValue(conn.User),
		"password=" + quoteValue(conn.Password),
		"dbname=" + quoteValue(conn.DbName),
		"sslmode=" + quoteValue(conn.SSLMode),
	}
	return strings.Join(parts, " ")
}

// quoteValue quotes a libpq keyword value when it is empty or contains
// characters that would otherwise end it.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return fmt.Sprintf("'%s'", v)
}
