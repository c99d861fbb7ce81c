package database

import (
	"context"
)

// Engine identifies the storage engine behind a Client.
type Engine string

const (
	// EngineSQLite is the embedded single-file engine.
	EngineSQLite Engine = "sqlite"
	// EnginePostgres is the networked engine reached through a connection pool.
	EnginePostgres Engine = "postgres"
)

// Client is the unified contract every storage engine implements.
//
// Templates use either positional `?` placeholders with one argument per
// marker, or `@name` placeholders with a single sqlbind.Named argument.
// Placeholder misuse is reported as a sqlbind binding error before the engine
// is touched. Engine failures are reported as *StorageError.
//
// Implementations:
//   - sqlite.SQLite and its transaction views
//   - postgres.Postgres and its transaction views
type Client interface {
	// Query runs a statement and returns every result row. A statement that
	// produces no rows yields an empty slice.
	Query(ctx context.Context, query string, args ...any) ([]Row, error)

	// GetOne returns the first result row. The boolean is false when the
	// statement matched nothing; that case is not an error.
	GetOne(ctx context.Context, query string, args ...any) (Row, bool, error)

	// Execute runs a statement for its effect and reports rows affected and,
	// where the engine can tell, the generated identifier.
	Execute(ctx context.Context, query string, args ...any) (Result, error)

	// RunRaw executes one or more semicolon separated statements without
	// parameter binding. It is meant for schema setup.
	RunRaw(ctx context.Context, batch string) error

	// WithTransaction runs fn inside a transaction scope. The Client passed to
	// fn executes every statement on one connection. fn returning an error or
	// panicking rolls the scope back; otherwise it is committed. Calling
	// WithTransaction on a scope's Client nests through a savepoint instead of
	// opening a second transaction.
	WithTransaction(ctx context.Context, fn func(tx Client) error) error

	// Prepare returns a reusable handle for one template.
	Prepare(ctx context.Context, query string) (Statement, error)

	// Engine reports which engine serves this client.
	Engine() Engine
}

// DB is a top-level Client that owns its connections.
type DB interface {
	Client

	// Ping verifies the engine is reachable.
	Ping(ctx context.Context) error

	// GracefulShutdown closes the underlying connections. It is safe to call
	// more than once.
	GracefulShutdown() error
}

// Statement is a prepared template that binds fresh arguments on every call.
type Statement interface {
	Run(ctx context.Context, args ...any) (Result, error)
	GetOne(ctx context.Context, args ...any) (Row, bool, error)
	All(ctx context.Context, args ...any) ([]Row, error)

	// Template returns the template text the handle was prepared from.
	Template() string
}

// Result summarises the effect of a statement executed with Execute or
// Statement.Run.
type Result struct {
	RowsAffected int64
	// InsertedID is the identifier generated by a single-row insert, or 0
	// when the statement did not produce one.
	InsertedID int64
}

// HasInsertedID reports whether InsertedID carries a generated identifier.
func (r Result) HasInsertedID() bool {
	return r.InsertedID > 0
}

// InTransaction is WithTransaction for work that produces a value. The value
// is only returned when the scope committed.
func InTransaction[T any](ctx context.Context, c Client, fn func(tx Client) (T, error)) (T, error) {
	var out T
	err := c.WithTransaction(ctx, func(tx Client) error {
		v, err := fn(tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
