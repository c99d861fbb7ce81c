// Package schema creates and upgrades the application tables on either
// storage engine.
//
// Bootstrap runs an idempotent CREATE TABLE IF NOT EXISTS batch. Migrator
// then brings databases created by older releases up to date by adding the
// columns they lack. Whether a column already exists is read from the
// engine's catalog rather than inferred from a failed ALTER TABLE:
//
//	if err := schema.Bootstrap(ctx, db); err != nil {
//		return err
//	}
//	report, err := schema.NewMigrator(db, schema.WithLogger(log)).Migrate(ctx)
//	if err != nil {
//		return err
//	}
//	log.Info("schema ready", nil, map[string]interface{}{"applied": report.Applied()})
package schema
