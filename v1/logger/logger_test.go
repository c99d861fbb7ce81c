package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lifecoach/std/v1/database"
)

func newObserved(tracing bool) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core), tracing), logs
}

func TestLogger_FieldsAndError(t *testing.T) {
	l, logs := newObserved(false)

	l.Warn("rollback failed", errors.New("conn reset"), map[string]interface{}{"engine": "sqlite"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "rollback failed", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "conn reset", ctx["error"])
	assert.Equal(t, "sqlite", ctx["engine"])
}

func TestLogger_WithContextAddsTraceIDs(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	t.Run("Enabled", func(t *testing.T) {
		l, logs := newObserved(true)
		l.InfoWithContext(ctx, "coach deleted", nil)

		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	})

	t.Run("Disabled", func(t *testing.T) {
		l, logs := newObserved(false)
		l.InfoWithContext(ctx, "coach deleted", nil)

		assert.NotContains(t, logs.All()[0].ContextMap(), "trace_id")
	})

	t.Run("NoSpan", func(t *testing.T) {
		l, logs := newObserved(true)
		l.ErrorWithContext(context.Background(), "lost", errors.New("x"))

		assert.NotContains(t, logs.All()[0].ContextMap(), "trace_id")
	})
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelOf(Debug))
	assert.Equal(t, zapcore.WarnLevel, levelOf(Warning))
	assert.Equal(t, zapcore.ErrorLevel, levelOf(Error))
	assert.Equal(t, zapcore.InfoLevel, levelOf("verbose"))
}

func TestFXModule(t *testing.T) {
	var dl database.Logger
	app := fxtest.New(t,
		fx.Provide(func() Config { return Config{Level: Debug} }),
		FXModule,
		fx.Populate(&dl),
	)
	app.RequireStart()
	require.NotNil(t, dl)
	dl.Info("started", nil)
	app.RequireStop()
}
