package postgres

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/lifecoach/std/v1/database"
)

// FXModule is an fx module that provides the Postgres database component.
// It registers the constructor and hooks that start connection monitoring
// with the application and close the pool when it stops.
//
// Use storage.FXModule instead when the engine is chosen by configuration.
var FXModule = fx.Module("postgres",
	fx.Provide(NewPostgresClientWithDI),
	fx.Invoke(RegisterPostgresLifecycle),
)

// PostgresParams groups the dependencies needed to create a Postgres client
// via dependency injection.
type PostgresParams struct {
	fx.In

	Config   Config
	Logger   database.Logger   `optional:"true"`
	Observer database.Observer `optional:"true"`
}

// NewPostgresClientWithDI creates a new Postgres client from injected
// dependencies. It delegates to NewPostgres.
func NewPostgresClientWithDI(params PostgresParams) (*Postgres, error) {
	return NewPostgres(params.Config, WithLogger(params.Logger), WithObserver(params.Observer))
}

// PostgresLifeCycleParams groups the dependencies needed for Postgres
// lifecycle management.
type PostgresLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Postgres  *Postgres
}

// RegisterPostgresLifecycle registers lifecycle hooks for the Postgres component:
//  1. connection monitoring and reconnection loops on application start
//  2. shutdown of both loops and the pool on application stop
//
// A WaitGroup makes OnStop wait for the loops before the pool is closed.
func RegisterPostgresLifecycle(params PostgresLifeCycleParams) {
	wg := &sync.WaitGroup{}
	// The start context expires once startup is over, the loops need to
	// outlive it.
	loopCtx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				params.Postgres.MonitorConnection(loopCtx)
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				params.Postgres.RetryConnection(loopCtx)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			params.Postgres.stopLoops()
			wg.Wait()
			return params.Postgres.GracefulShutdown()
		},
	})
}
