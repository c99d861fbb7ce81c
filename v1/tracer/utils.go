package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	traceSpan "go.opentelemetry.io/otel/trace"
)

// Environment variables a parent process sets to hand its trace context to
// a child, e.g. a deploy job running coachdb migrate.
const (
	EnvTraceParent = "TRACEPARENT"
	EnvTraceState  = "TRACESTATE"
	EnvBaggage     = "BAGGAGE"
)

var propagator = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

// ContextFromEnv returns ctx carrying the remote span described by
// TRACEPARENT, TRACESTATE and BAGGAGE as read through lookup (normally
// os.Getenv). Without TRACEPARENT ctx is returned unchanged.
func (t *Tracer) ContextFromEnv(ctx context.Context, lookup func(string) string) context.Context {
	carrier := propagation.MapCarrier{}
	for header, env := range map[string]string{
		"traceparent": EnvTraceParent,
		"tracestate":  EnvTraceState,
		"baggage":     EnvBaggage,
	} {
		if v := lookup(env); v != "" {
			carrier[header] = v
		}
	}
	if carrier["traceparent"] == "" {
		return ctx
	}
	return propagator.Extract(ctx, carrier)
}

// StartSpan starts an internal span named name under the span in ctx.
// Storage spans recorded through ObserveOperation with the returned context
// become its children.
//
//	ctx, span := tr.StartSpan(ctx, "coachdb.migrate", map[string]interface{}{"engine": "sqlite"})
//	defer func() { tr.EndSpan(span, err) }()
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs map[string]interface{}) (context.Context, traceSpan.Span) {
	return t.tracer.Tracer(instrumentationName).Start(ctx, name,
		traceSpan.WithAttributes(toAttributes(attrs)...))
}

// EndSpan marks span failed when err is not nil and ends it.
func (t *Tracer) EndSpan(span traceSpan.Span, err error) {
	if err != nil {
		markFailed(span, err)
	}
	span.End()
}

// RecordError marks the span carried by ctx as failed. It is a no-op when
// ctx carries no recording span.
func (t *Tracer) RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	markFailed(traceSpan.SpanFromContext(ctx), err)
}

func markFailed(span traceSpan.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toAttributes(attrs map[string]interface{}) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			out = append(out, attribute.String(k, val))
		case int:
			out = append(out, attribute.Int(k, val))
		case int64:
			out = append(out, attribute.Int64(k, val))
		case float64:
			out = append(out, attribute.Float64(k, val))
		case bool:
			out = append(out, attribute.Bool(k, val))
		case []string:
			out = append(out, attribute.StringSlice(k, val))
		default:
			out = append(out, attribute.String(k, fmt.Sprint(val)))
		}
	}
	return out
}
