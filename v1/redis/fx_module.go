package redis

import (
	"context"

	"go.uber.org/fx"

	"github.com/lifecoach/std/v1/database"
)

// FXModule provides the Redis cache client and closes it on stop.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    redis.FXModule,
//	    fx.Provide(func() redis.Config { return cfg }),
//	)
var FXModule = fx.Module("redis",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterRedisLifecycle),
)

// RedisParams groups the dependencies needed to create a Redis client.
type RedisParams struct {
	fx.In

	Config    Config
	Logger    database.Logger     `optional:"true"`
	Observers []database.Observer `group:"storage_observers"`
}

// NewClientWithDI creates a Redis client from injected dependencies. Cache
// operations are reported to the same observers as the storage engines.
func NewClientWithDI(params RedisParams) (*Client, error) {
	opts := []Option{WithLogger(params.Logger)}
	if len(params.Observers) > 0 {
		opts = append(opts, WithObserver(database.Observers(params.Observers)))
	}
	return NewClient(params.Config, opts...)
}

type RedisLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *Client
	Logger    database.Logger `optional:"true"`
}

// RegisterRedisLifecycle pings Redis on start and closes the pool on stop.
// A failed ping aborts startup.
func RegisterRedisLifecycle(params RedisLifecycleParams) {
	log := params.Logger
	if log == nil {
		log = database.NopLogger{}
	}
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Client.Ping(ctx); err != nil {
				log.Error("failed to ping redis on startup", err)
				return err
			}
			log.Info("redis client started and healthy", nil)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return params.Client.Close()
		},
	})
}
