package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lifecoach/std/v1/database"
)

// ErrInvalidInput is returned before any statement runs when a required
// field is missing or out of range.
var ErrInvalidInput = errors.New("invalid input")

// SessionCache keeps resolved sessions out of the database. redis.Client
// satisfies it.
type SessionCache interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Store(ctx context.Context, key string, value []byte) error
	Forget(ctx context.Context, key string) error
}

// Store reads and writes application records through a database.Client.
type Store struct {
	db       database.Client
	logger   database.Logger
	sessions SessionCache
}

type Option func(*Store)

// WithSessionCache resolves session tokens through cache first. Cache
// failures are logged and fall back to the database.
func WithSessionCache(cache SessionCache) Option {
	return func(s *Store) {
		s.sessions = cache
	}
}

func WithLogger(logger database.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Store on top of db. db may be a top-level client or a
// transaction scope.
func New(db database.Client, opts ...Option) *Store {
	s := &Store{db: db, logger: database.NopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithClient returns a copy of the Store running on c, typically a
// transaction scope. Logger and cache are shared.
func (s *Store) WithClient(c database.Client) *Store {
	cp := *s
	cp.db = c
	return &cp
}

// Client returns the client the Store runs statements on.
func (s *Store) Client() database.Client {
	return s.db
}

// fields reads typed columns from a row and keeps the first conversion error.
type fields struct {
	row database.Row
	err error
}

func (f *fields) int64(col string) int64 {
	n, err := f.row.Int64(col)
	if err != nil && f.err == nil {
		f.err = err
	}
	return n
}

func (f *fields) time(col string) time.Time {
	t, err := f.row.Time(col)
	if err != nil && f.err == nil {
		f.err = err
	}
	return t
}

func (f *fields) string(col string) string {
	return f.row.String(col)
}

// nullable maps the empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
