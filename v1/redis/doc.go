// Package redis caches short-lived lookups, such as session token to user
// resolution, in Redis.
//
// The Client exposes three byte-oriented operations, Load, Store and Forget,
// which is the shape repository.SessionCache expects:
//
//	cache, err := redis.NewClient(redis.Config{Host: "localhost", TTL: 10 * time.Minute},
//		redis.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer cache.Close()
//
//	store := repository.New(db, repository.WithSessionCache(cache))
//
// Every key is prefixed with Config.KeyPrefix ("coach:" by default) and
// expires after Config.TTL. A missing key is reported as a miss, never as an
// error.
//
// Observability:
//
// Operations are reported to a database.Observer under the component name
// "redis" with operations "get", "set" and "del". Only the key namespace is
// reported as the resource, since keys may be session tokens.
//
// FX Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		redis.FXModule,
//		fx.Provide(func() redis.Config { return cfg.Redis }),
//	)
//
// The module pings Redis on start and closes the pool on stop.
package redis
