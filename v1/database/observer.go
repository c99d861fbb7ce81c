package database

import (
	"context"
	"time"
)

// OperationContext describes one finished storage operation.
type OperationContext struct {
	// Context is the caller context the operation ran under. Tracing
	// observers use it to parent their spans.
	Context context.Context

	// Component is the engine name, "sqlite" or "postgres".
	Component string
	// Operation is one of "query", "get_one", "execute", "run_raw",
	// "prepare" or "transaction".
	Operation string
	// Resource is the statement template as written by the caller.
	Resource string
	Start    time.Time
	Duration time.Duration
	Error    error
	// Size is the number of rows returned or affected.
	Size int64
	// Metadata carries per-operation extras such as the transaction outcome.
	Metadata map[string]interface{}
}

// Observer receives a notification after every storage operation. Metrics
// and tracing plug in here. Implementations must be safe for concurrent use
// and must not block.
type Observer interface {
	ObserveOperation(op OperationContext)
}

// Observers fans a notification out to several observers.
type Observers []Observer

func (o Observers) ObserveOperation(op OperationContext) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveOperation(op)
		}
	}
}

// Observe notifies obs about an operation that started at start. A nil
// observer is ignored.
func Observe(ctx context.Context, obs Observer, engine Engine, operation, template string, start time.Time, err error, size int64, metadata map[string]interface{}) {
	if obs == nil {
		return
	}
	obs.ObserveOperation(OperationContext{
		Context:   ctx,
		Component: string(engine),
		Operation: operation,
		Resource:  template,
		Start:     start,
		Duration:  time.Since(start),
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}
