package logger

import (
	"context"

	"go.uber.org/fx"

	"github.com/lifecoach/std/v1/database"
)

// FXModule defines the Fx module for the logger package.
//
// It provides *Logger from a Config in the container, exposes it as
// database.Logger for the storage adapters, and flushes buffered entries
// when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    fx.Provide(func() logger.Config { return logger.Config{Level: logger.Info} }),
//	    storage.FXModule,
//	)
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		func(l *Logger) database.Logger { return l },
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle registers an OnStop hook that calls Sync on the
// underlying Zap logger so no buffered entry is lost on shutdown.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stderr returns EINVAL/ENOTTY on some platforms.
			_ = client.Zap.Sync()
			return nil
		},
	})
}

var _ database.Logger = (*Logger)(nil)
