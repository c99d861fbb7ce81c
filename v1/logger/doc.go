// Package logger provides structured logging for the storage services.
//
// It wraps Uber's zap with a small method set: every method takes a
// message, an optional error and optional field maps. That set is the
// database.Logger interface, so the adapters accept a *Logger as is.
//
// Direct usage:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Info,
//		ServiceName:   "coach-api",
//		EnableTracing: true,
//	})
//
//	log.Info("User logged in", nil, map[string]interface{}{
//		"user_id": 12345,
//	})
//
//	// trace_id and span_id are added when ctx carries a span
//	log.InfoWithContext(ctx, "Coach deleted", nil, map[string]interface{}{
//		"coach_id": 42,
//	})
//
// With fx, FXModule provides *Logger and database.Logger and flushes the
// logger on stop.
package logger
