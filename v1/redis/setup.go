package redis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/lifecoach/std/v1/database"
)

// Component is the name reported to observers.
const Component database.Engine = "redis"

// Client is a key/value cache on top of go-redis. Keys are namespaced with
// Config.KeyPrefix and expire after Config.TTL.
type Client struct {
	rdb      redis.UniversalClient
	cfg      Config
	logger   database.Logger
	observer database.Observer

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

type Option func(*Client)

func WithLogger(logger database.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithObserver(observer database.Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient creates a client for a standalone Redis server. No connection is
// made until the first command; use Ping to check reachability.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled {
		var err error
		tlsConfig, err = createTLSConfig(cfg.TLS, cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		TLSConfig:    tlsConfig,
	})
	return newClient(rdb, cfg, opts...), nil
}

func newClient(rdb redis.UniversalClient, cfg Config, opts ...Option) *Client {
	c := &Client{rdb: rdb, cfg: cfg, logger: database.NopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	c.logger.Info("redis client initialized", nil, map[string]interface{}{
		"addr":   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		"prefix": cfg.KeyPrefix,
	})
	return c
}

func createTLSConfig(cfg TLSConfig, defaultServerName string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		ServerName:         defaultServerName,
	}
	if cfg.ServerName != "" {
		tlsConfig.ServerName = cfg.ServerName
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

// Raw returns the underlying go-redis client.
func (c *Client) Raw() redis.UniversalClient {
	return c.rdb
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return database.ErrClientClosed
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the connection pool. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.logger.Info("closing redis client", nil)
		if err := c.rdb.Close(); err != nil {
			c.logger.Warn("failed to close redis client", err)
			c.closeErr = err
		}
	})
	return c.closeErr
}
