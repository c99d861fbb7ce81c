package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"github.com/lifecoach/std/v1/database"
)

// ObserverGroup is the fx value group storage.FXModule collects
// database.Observer implementations from.
const ObserverGroup = `group:"storage_observers"`

// FXModule defines the Fx module for the metrics package.
//
// It provides *Metrics and MetricsCollector, adds *Metrics to the storage
// observer group so every storage operation is counted, and runs the
// /metrics server for the lifetime of the application.
//
// Usage:
//
//	app := fx.New(
//	    metrics.FXModule,
//	    fx.Provide(func() metrics.Config {
//	        return metrics.Config{Address: ":9090", ServiceName: "coach-api"}
//	    }),
//	    storage.FXModule,
//	)
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		func(m *Metrics) MetricsCollector { return m },
		fx.Annotate(
			func(m *Metrics) database.Observer { return m },
			fx.ResultTags(ObserverGroup),
		),
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// MetricsLifecycleParams groups the dependencies for lifecycle registration.
type MetricsLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    database.Logger `optional:"true"`
}

// RegisterMetricsLifecycle starts the metrics HTTP server in a background
// goroutine on start and shuts it down gracefully on stop.
func RegisterMetricsLifecycle(params MetricsLifecycleParams) {
	log := params.Logger
	if log == nil {
		log = database.NopLogger{}
	}
	m := params.Metrics

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("Starting Prometheus metrics server", nil, map[string]interface{}{
					"address": m.Server.Addr,
				})

				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Error starting Prometheus metrics server", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Prometheus metrics server", nil, nil)
			return m.Server.Shutdown(ctx)
		},
	})
}
