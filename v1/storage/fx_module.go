package storage

import (
	"context"

	"go.uber.org/fx"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/postgres"
	"github.com/lifecoach/std/v1/sqlite"
)

// FXModule provides database.DB and database.Client via dependency
// injection. The implementation is selected by Config.Engine.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    storage.FXModule,
//	    fx.Provide(func() (storage.Config, error) {
//	        return storage.LoadConfig("coach.yaml")
//	    }),
//	    fx.Invoke(func(db database.Client) {
//	        // engine independent from here on
//	    }),
//	)
var FXModule = fx.Module("storage",
	fx.Provide(
		NewClientWithDI,
		func(db database.DB) database.Client { return db },
	),
	fx.Invoke(RegisterStorageLifecycle),
)

// StorageParams groups the dependencies needed to create a storage client.
type StorageParams struct {
	fx.In

	Config   Config
	Logger   database.Logger   `optional:"true"`
	Observer database.Observer `optional:"true"`
	// Observers collects the observers metrics.FXModule and
	// tracer.FXModule contribute.
	Observers []database.Observer `group:"storage_observers"`
}

// NewClientWithDI opens the configured engine. Every injected observer is
// notified of every operation.
func NewClientWithDI(params StorageParams) (database.DB, error) {
	return New(params.Config, Options{
		Logger:   params.Logger,
		Observer: combineObservers(params.Observer, params.Observers),
	})
}

func combineObservers(single database.Observer, group []database.Observer) database.Observer {
	all := make(database.Observers, 0, len(group)+1)
	if single != nil {
		all = append(all, single)
	}
	for _, o := range group {
		if o != nil {
			all = append(all, o)
		}
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	}
	return all
}

// StorageLifecycleParams groups the dependencies for lifecycle management.
type StorageLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    Config
	DB        database.DB
	Logger    database.Logger `optional:"true"`
}

// RegisterStorageLifecycle hands the client to its engine's own lifecycle
// registration, so PostgreSQL keeps its connection monitor, and runs
// migrations on start when Config.AutoMigrate is set.
func RegisterStorageLifecycle(params StorageLifecycleParams) {
	log := params.Logger
	if log == nil {
		log = database.NopLogger{}
	}

	if params.Config.AutoMigrate {
		params.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				report, err := Prepare(ctx, params.DB, log)
				if err != nil {
					return err
				}
				log.Info("storage schema ready", nil, map[string]interface{}{
					"engine":  string(params.DB.Engine()),
					"applied": report.Applied(),
				})
				return nil
			},
		})
	}

	switch db := params.DB.(type) {
	case *postgres.Postgres:
		postgres.RegisterPostgresLifecycle(postgres.PostgresLifeCycleParams{
			Lifecycle: params.Lifecycle,
			Postgres:  db,
		})
	case *sqlite.SQLite:
		sqlite.RegisterSQLiteLifecycle(sqlite.SQLiteLifeCycleParams{
			Lifecycle: params.Lifecycle,
			SQLite:    db,
		})
	default:
		params.Lifecycle.Append(fx.Hook{
			OnStart: db.Ping,
			OnStop: func(context.Context) error {
				return db.GracefulShutdown()
			},
		})
	}
}
