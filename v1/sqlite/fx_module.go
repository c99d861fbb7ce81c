package sqlite

import (
	"context"

	"go.uber.org/fx"

	"github.com/lifecoach/std/v1/database"
)

// FXModule provides a *SQLite built from a Config in the container and
// closes it when the application stops. Use storage.FXModule instead when
// the engine is chosen by configuration.
var FXModule = fx.Module("sqlite",
	fx.Provide(NewSQLiteClientWithDI),
	fx.Invoke(RegisterSQLiteLifecycle),
)

// SQLiteParams groups the dependencies needed to create a SQLite client.
type SQLiteParams struct {
	fx.In

	Config   Config
	Logger   database.Logger   `optional:"true"`
	Observer database.Observer `optional:"true"`
}

// NewSQLiteClientWithDI creates a SQLite client from injected dependencies.
func NewSQLiteClientWithDI(params SQLiteParams) (*SQLite, error) {
	return NewSQLite(params.Config, WithLogger(params.Logger), WithObserver(params.Observer))
}

// SQLiteLifeCycleParams groups the dependencies for lifecycle registration.
type SQLiteLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	SQLite    *SQLite
}

// RegisterSQLiteLifecycle pings the database on start and closes it on stop.
func RegisterSQLiteLifecycle(params SQLiteLifeCycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return params.SQLite.Ping(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return params.SQLite.GracefulShutdown()
		},
	})
}
