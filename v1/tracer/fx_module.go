package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/lifecoach/std/v1/database"
)

// FXModule provides *Tracer, contributes it to the storage observer group
// so every storage operation is recorded as a span, and shuts the provider
// down when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    tracer.FXModule,
//	    fx.Provide(func() tracer.Config {
//	        return tracer.Config{ServiceName: "coach-api", AppEnv: "production"}
//	    }),
//	    storage.FXModule,
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(t *Tracer) database.Observer { return t },
			fx.ResultTags(`group:"storage_observers"`),
		),
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// TracerParams groups the dependencies needed to create a Tracer.
type TracerParams struct {
	fx.In

	Config Config
	Logger database.Logger `optional:"true"`
}

// NewClientWithDI creates a Tracer from injected dependencies.
func NewClientWithDI(params TracerParams) (*Tracer, error) {
	return NewClient(params.Config, params.Logger)
}

// RegisterTracerLifecycle flushes and stops the tracer provider on
// application stop.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			tracer.logger.Info("shutting down tracer", nil, nil)
			return tracer.Shutdown(ctx)
		},
	})
}
