package storage

import (
	"context"
	"fmt"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/postgres"
	"github.com/lifecoach/std/v1/schema"
	"github.com/lifecoach/std/v1/sqlite"
)

// Options carries the collaborators shared by both engines.
type Options struct {
	Logger   database.Logger
	Observer database.Observer
}

// New opens the engine selected by cfg. Both adapters satisfy database.DB,
// so callers never see which one they got.
func New(cfg Config, opts Options) (database.DB, error) {
	if err := cfg.resolveEngine(); err != nil {
		return nil, err
	}

	switch database.Engine(cfg.Engine) {
	case database.EnginePostgres:
		pg, err := postgres.NewPostgres(cfg.Postgres,
			postgres.WithLogger(opts.Logger),
			postgres.WithObserver(opts.Observer))
		if err != nil {
			return nil, err
		}
		return pg, nil
	case database.EngineSQLite:
		lite, err := sqlite.NewSQLite(cfg.SQLite,
			sqlite.WithLogger(opts.Logger),
			sqlite.WithObserver(opts.Observer))
		if err != nil {
			return nil, err
		}
		return lite, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, cfg.Engine)
}

// Prepare bootstraps the tables and applies the default migrations.
func Prepare(ctx context.Context, db database.DB, logger database.Logger) (schema.Report, error) {
	if err := schema.Bootstrap(ctx, db); err != nil {
		return schema.Report{}, err
	}
	return schema.NewMigrator(db, schema.WithLogger(logger)).Migrate(ctx)
}
