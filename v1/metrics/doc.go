// Package metrics exposes Prometheus metrics for the storage layer.
//
// *Metrics implements database.Observer. Once handed to an adapter, or
// registered through FXModule, it maintains:
//
//	db_operations_total{engine, operation, status}
//	db_operation_duration_seconds{engine, operation}
//	db_rows_total{engine, operation}
//	db_transactions_total{engine, outcome}
//
// status is "ok", the storage error kind ("constraint", "connectivity",
// "transaction", "unknown"), "binding_error" or "closed". outcome is
// "commit", "rollback", "commit_failed", "begin_failed" or "panic".
//
// Direct usage:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "coach-api"})
//	go m.Server.ListenAndServe()
//
//	db, err := sqlite.NewSQLite(cfg, sqlite.WithObserver(m))
//
// Custom metrics share the registry, namespace and service label:
//
//	logins := m.CreateCounter("logins_total", "Successful logins", []string{"provider"})
//	logins.WithLabelValues("google").Inc()
package metrics
