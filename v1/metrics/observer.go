package metrics

import (
	"errors"
	"time"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlbind"
)

// Operation status label values.
const (
	StatusOK      = "ok"
	StatusBinding = "binding_error"
	StatusClosed  = "closed"
)

// RecordOperation counts one storage operation and records its duration.
func (m *Metrics) RecordOperation(engine, operation, status string, duration time.Duration) {
	m.operationsTotal.WithLabelValues(engine, operation, status).Inc()
	m.operationDuration.WithLabelValues(engine, operation).Observe(duration.Seconds())
}

// RecordTransaction counts one finished transaction.
func (m *Metrics) RecordTransaction(engine, outcome string) {
	m.transactionsTotal.WithLabelValues(engine, outcome).Inc()
}

// ObserveOperation implements database.Observer. Transactions are counted by
// outcome; savepoints count as operations only.
func (m *Metrics) ObserveOperation(op database.OperationContext) {
	m.RecordOperation(op.Component, op.Operation, statusOf(op.Error), op.Duration)
	if op.Size > 0 {
		m.rowsTotal.WithLabelValues(op.Component, op.Operation).Add(float64(op.Size))
	}
	if op.Operation == "transaction" {
		outcome, _ := op.Metadata["outcome"].(string)
		if outcome == "" {
			outcome = "unknown"
		}
		m.RecordTransaction(op.Component, outcome)
	}
}

// statusOf keeps the label set small: ok, the storage error kind, or one of
// the two caller mistakes that never reach the engine.
func statusOf(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, sqlbind.ErrBinding):
		return StatusBinding
	case errors.Is(err, database.ErrScopeClosed), errors.Is(err, database.ErrClientClosed):
		return StatusClosed
	}
	return database.KindOf(err).String()
}

var _ MetricsCollector = (*Metrics)(nil)
