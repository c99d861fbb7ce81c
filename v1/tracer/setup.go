package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/lifecoach/std/v1/database"
)

// instrumentationName names the tracer storage spans are created with.
const instrumentationName = "github.com/lifecoach/std/v1/tracer"

// Tracer owns the OpenTelemetry tracer provider.
type Tracer struct {
	tracer *trace.TracerProvider
	logger database.Logger
	cfg    Config
}

// NewClient builds a tracer provider from cfg, installs it as the global
// provider together with the W3C trace context and baggage propagators, and
// returns it wrapped in a Tracer.
func NewClient(cfg Config, logger database.Logger) (*Tracer, error) {
	var options []trace.TracerProviderOption

	if cfg.EnableExport {
		client := otlptracehttp.NewClient()
		exporter, err := otlptrace.New(context.Background(), client)
		if err != nil {
			return nil, fmt.Errorf("cannot initiate tracer exporter: %w", err)
		}
		options = append(options, trace.WithBatcher(exporter))
	}
	return newTracer(cfg, logger, options...), nil
}

func newTracer(cfg Config, logger database.Logger, options ...trace.TracerProviderOption) *Tracer {
	if logger == nil {
		logger = database.NopLogger{}
	}

	options = append(options, trace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := trace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator)

	return &Tracer{tracer: tp, logger: logger, cfg: cfg}
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.tracer == nil {
		return nil
	}
	return t.tracer.Shutdown(ctx)
}
