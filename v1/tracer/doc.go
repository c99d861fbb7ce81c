// Package tracer sets up OpenTelemetry tracing and records storage
// operations as spans.
//
// *Tracer implements database.Observer. Every query, execute, prepare,
// transaction and savepoint becomes a client span named
// "<engine>.<operation>", e.g. "postgres.execute", parented to whatever span
// the caller's context carries. Statement templates are attached as
// db.statement only when Config.RecordStatements is set.
//
//	tr, err := tracer.NewClient(tracer.Config{
//		ServiceName:  "coach-api",
//		EnableExport: true,
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer tr.Shutdown(ctx)
//
//	db, err := postgres.NewPostgres(cfg, postgres.WithObserver(tr))
//
// ContextFromEnv continues a trace handed over by a parent process through
// the TRACEPARENT, TRACESTATE and BAGGAGE variables. StartSpan and EndSpan
// wrap a unit of work, such as one CLI command, in a root span that the
// storage spans hang off.
package tracer
