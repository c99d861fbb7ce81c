package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlbind"
)

// DriverName is the database/sql driver registered by mattn/go-sqlite3.
const DriverName = "sqlite3"

// SQLite is the embedded engine adapter. Every operation runs synchronously
// on the calling goroutine; there is no background I/O.
//
// Top-level statements go through a small database/sql pool (one connection
// by default). A transaction scope pins one connection for its duration, so
// work inside WithTransaction must use the scope's client. Calling the
// top-level client from inside a scope waits for a free connection and, with
// the default single connection, never gets one.
type SQLite struct {
	db       *sqlx.DB
	cfg      Config
	logger   database.Logger
	observer database.Observer
	coord    *database.Coordinator

	compiled sync.Map // template -> *sqlbind.Compiled
	stmts    sync.Map // template -> *preparedStatement
	prepare  singleflight.Group

	closed    atomic.Bool
	closeOnce sync.Once
}

// Option customises a SQLite client.
type Option func(*SQLite)

// WithLogger sets the logger used for lifecycle and rollback messages.
func WithLogger(logger database.Logger) Option {
	return func(s *SQLite) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the observer notified after every operation.
func WithObserver(observer database.Observer) Option {
	return func(s *SQLite) {
		s.observer = observer
	}
}

// NewSQLite opens the database file described by cfg and verifies it with a ping.
func NewSQLite(cfg Config, opts ...Option) (*SQLite, error) {
	cfg = cfg.withDefaults()
	s := &SQLite{
		cfg:    cfg,
		logger: database.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.coord = &database.Coordinator{
		Engine:   database.EngineSQLite,
		Logger:   s.logger,
		Observer: s.observer,
	}

	db, err := connectToSQLite(cfg)
	if err != nil {
		return nil, fmt.Errorf("error in connecting to sqlite: %w", err)
	}
	s.db = db

	s.logger.Info("Successfully opened SQLite database", nil, map[string]interface{}{
		"path":           cfg.Path,
		"journal_mode":   cfg.JournalMode,
		"max_open_conns": cfg.MaxOpenConns,
	})
	return s, nil
}

// DSN builds the driver data source name for cfg.
func DSN(cfg Config) string {
	cfg = cfg.withDefaults()
	params := url.Values{}
	params.Set("_busy_timeout", strconv.FormatInt(cfg.BusyTimeout.Milliseconds(), 10))
	if cfg.DisableForeignKeys {
		params.Set("_foreign_keys", "off")
	} else {
		params.Set("_foreign_keys", "on")
	}
	if !cfg.inMemory() {
		params.Set("_journal_mode", cfg.JournalMode)
	}
	return cfg.Path + "?" + params.Encode()
}

func connectToSQLite(cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	// Closing the last connection of an in-memory database drops its contents.
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}

// DB returns the underlying database/sql handle. The schema package uses it
// to inspect the catalog.
func (s *SQLite) DB() *sqlx.DB {
	return s.db
}

// Config returns the effective configuration, defaults applied.
func (s *SQLite) Config() Config {
	return s.cfg
}

// Engine implements database.Client.
func (s *SQLite) Engine() database.Engine {
	return database.EngineSQLite
}

// Ping verifies the database file is still usable.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return database.Wrap(database.EngineSQLite, "ping", "", s.db.PingContext(ctx), classify)
}

// GracefulShutdown closes cached statements and the database. Later calls
// return ErrClientClosed from every operation.
func (s *SQLite) GracefulShutdown() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.stmts.Range(func(key, value any) bool {
			if p, ok := value.(*preparedStatement); ok {
				_ = p.stmt.Close()
			}
			s.stmts.Delete(key)
			return true
		})
		err = s.db.Close()
		s.logger.Info("SQLite database closed", err, nil)
	})
	return err
}

func (s *SQLite) checkOpen() error {
	if s.closed.Load() {
		return database.ErrClientClosed
	}
	return nil
}

// compile returns the cached translation of template.
func (s *SQLite) compile(template string) (*sqlbind.Compiled, error) {
	if c, ok := s.compiled.Load(template); ok {
		return c.(*sqlbind.Compiled), nil
	}
	c, err := sqlbind.Compile(template, sqlbind.Question)
	if err != nil {
		return nil, err
	}
	actual, _ := s.compiled.LoadOrStore(template, c)
	return actual.(*sqlbind.Compiled), nil
}

func (s *SQLite) bind(template string, args []any) (*sqlbind.Compiled, []any, error) {
	c, err := s.compile(template)
	if err != nil {
		return nil, nil, err
	}
	values, err := c.Bind(args...)
	if err != nil {
		return nil, nil, err
	}
	return c, values, nil
}

var _ database.DB = (*SQLite)(nil)
