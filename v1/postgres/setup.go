package postgres

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlbind"
)

// Postgres is the networked engine adapter on a pgx connection pool.
//
// Top-level statements check a connection out of the pool for the single
// statement and return it immediately. Transaction scopes hold one
// connection for their whole duration.
//
// Concurrency: the active pool is stored in an atomic pointer and can be
// swapped by RetryConnection without blocking readers.
type Postgres struct {
	cfg      Config
	pool     atomic.Pointer[pgxpool.Pool]
	logger   database.Logger
	observer database.Observer
	coord    *database.Coordinator

	compiled sync.Map // template -> *sqlbind.Compiled

	healthy         atomic.Bool
	closed          atomic.Bool
	shutdownSignal  chan struct{}
	retryChanSignal chan error

	closeRetryChanOnce sync.Once
	closeShutdownOnce  sync.Once
}

// Option customises a Postgres client.
type Option func(*Postgres)

// WithLogger sets the logger used for connection and rollback messages.
func WithLogger(logger database.Logger) Option {
	return func(p *Postgres) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver sets the observer notified after every operation.
func WithObserver(observer database.Observer) Option {
	return func(p *Postgres) {
		p.observer = observer
	}
}

// NewPostgres creates the pool described by cfg and verifies it with a ping.
func NewPostgres(cfg Config, opts ...Option) (*Postgres, error) {
	cfg = cfg.withDefaults()
	p := &Postgres{
		cfg:             cfg,
		logger:          database.NopLogger{},
		shutdownSignal:  make(chan struct{}),
		retryChanSignal: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.coord = &database.Coordinator{
		Engine:   database.EnginePostgres,
		Logger:   p.logger,
		Observer: p.observer,
	}

	pool, err := connectToPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("error in connecting to postgres: %w", err)
	}
	p.pool.Store(pool)
	p.healthy.Store(true)

	p.logger.Info("Successfully connected to PostgreSQL database", nil, map[string]interface{}{
		"host":      pool.Config().ConnConfig.Host,
		"database":  pool.Config().ConnConfig.Database,
		"max_conns": pool.Config().MaxConns,
	})
	return p, nil
}

// connectToPostgres builds a pool from cfg, applying pool defaults, and pings it.
func connectToPostgres(cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connection string: %w", err)
	}

	details := cfg.ConnectionDetails
	poolCfg.MaxConns = int32(details.MaxOpenConns)
	poolCfg.MinConns = int32(details.MinConns)
	poolCfg.MaxConnLifetime = details.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = details.ConnMaxIdleTime

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

// Pool returns the active connection pool.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool.Load()
}

// Engine implements database.Client.
func (p *Postgres) Engine() database.Engine {
	return database.EnginePostgres
}

// Ping verifies the server is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	return database.Wrap(database.EnginePostgres, "ping", "", p.Pool().Ping(ctx), classify)
}

// Healthy reports the result of the most recent health check.
func (p *Postgres) Healthy() bool {
	return p.healthy.Load()
}

// RetryConnection waits for health check failures and rebuilds the pool
// until a new one answers. It returns on shutdown or when ctx is done.
func (p *Postgres) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		select {
		case <-p.shutdownSignal:
			p.logger.Info("Stopping RetryConnection loop due to shutdown signal", nil, nil)
			return
		case <-ctx.Done():
			return
		case _, ok := <-p.retryChanSignal:
			if !ok {
				return
			}
		innerLoop:
			for {
				select {
				case <-p.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
					newPool, err := connectToPostgres(p.cfg)
					if err != nil {
						p.logger.Error("PostgreSQL reconnection failed", err, nil)
						time.Sleep(time.Second)
						continue innerLoop
					}
					if p.closed.Load() {
						newPool.Close()
						return
					}
					old := p.pool.Swap(newPool)
					p.healthy.Store(true)
					// Close blocks until borrowed connections come back.
					go old.Close()
					p.logger.Info("Successfully reconnected to PostgreSQL database", nil, nil)
					continue outerLoop
				}
			}
		}
	}
}

// MonitorConnection pings the pool every HealthCheckInterval and signals
// RetryConnection when a ping fails.
func (p *Postgres) MonitorConnection(ctx context.Context) {
	defer p.closeRetryChanOnce.Do(func() {
		close(p.retryChanSignal)
	})

	ticker := time.NewTicker(p.cfg.ConnectionDetails.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.shutdownSignal:
			p.logger.Info("Stopping MonitorConnection loop due to shutdown signal", nil, nil)
			return
		case <-ticker.C:
			err := p.healthCheck()
			if err != nil {
				if p.healthy.Swap(false) {
					p.logger.Warn("PostgreSQL health check failed", err, nil)
				}
				select {
				case p.retryChanSignal <- err:
				default:
				}
				continue
			}
			if !p.healthy.Swap(true) {
				p.logger.Info("PostgreSQL connection recovered", nil, nil)
			}
		case <-ctx.Done():
			return
		}
	}
}

// healthCheck pings the current pool with a 5 second timeout.
func (p *Postgres) healthCheck() error {
	pool := p.Pool()
	if pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed during health check: %w", err)
	}
	return nil
}

// stopLoops signals MonitorConnection and RetryConnection to return.
func (p *Postgres) stopLoops() {
	p.closeShutdownOnce.Do(func() {
		close(p.shutdownSignal)
	})
}

// GracefulShutdown stops the monitoring loops and closes the pool. Later
// calls on the client fail with database.ErrClientClosed.
func (p *Postgres) GracefulShutdown() error {
	p.stopLoops()
	if p.closed.Swap(true) {
		return nil
	}
	if pool := p.Pool(); pool != nil {
		pool.Close()
	}
	p.logger.Info("PostgreSQL pool closed", nil, nil)
	return nil
}

func (p *Postgres) checkOpen() error {
	if p.closed.Load() {
		return database.ErrClientClosed
	}
	return nil
}

func (p *Postgres) compile(template string) (*sqlbind.Compiled, error) {
	if c, ok := p.compiled.Load(template); ok {
		return c.(*sqlbind.Compiled), nil
	}
	c, err := sqlbind.Compile(template, sqlbind.Dollar)
	if err != nil {
		return nil, err
	}
	actual, _ := p.compiled.LoadOrStore(template, c)
	return actual.(*sqlbind.Compiled), nil
}

func (p *Postgres) bind(template string, args []any) (*sqlbind.Compiled, []any, error) {
	c, err := p.compile(template)
	if err != nil {
		return nil, nil, err
	}
	values, err := c.Bind(args...)
	if err != nil {
		return nil, nil, err
	}
	return c, values, nil
}

var _ database.DB = (*Postgres)(nil)
