package tracer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	traceSpan "go.opentelemetry.io/otel/trace"

	"github.com/lifecoach/std/v1/database"
)

// ObserveOperation implements database.Observer. Each finished storage
// operation becomes one client span, back-dated to the operation start and
// parented to the span in the caller context.
func (t *Tracer) ObserveOperation(op database.OperationContext) {
	ctx := op.Context
	if ctx == nil {
		ctx = context.Background()
	}

	attrs := []attribute.KeyValue{
		attribute.String("db.system", op.Component),
		attribute.String("db.operation", op.Operation),
		attribute.Int64("db.rows", op.Size),
	}
	if t.cfg.RecordStatements && op.Resource != "" {
		attrs = append(attrs, attribute.String("db.statement", op.Resource))
	}
	if len(op.Metadata) > 0 {
		attrs = append(attrs, toAttributes(op.Metadata)...)
	}

	_, span := t.tracer.Tracer(instrumentationName).Start(ctx, op.Component+"."+op.Operation,
		traceSpan.WithTimestamp(op.Start),
		traceSpan.WithSpanKind(traceSpan.SpanKindClient),
		traceSpan.WithAttributes(attrs...),
	)
	if op.Error != nil {
		markFailed(span, op.Error)
		span.SetAttributes(attribute.String("db.error_kind", database.KindOf(op.Error).String()))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(traceSpan.WithTimestamp(op.Start.Add(op.Duration)))
}

var _ database.Observer = (*Tracer)(nil)
