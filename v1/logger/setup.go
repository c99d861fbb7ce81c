package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper around Uber's Zap logger.
//
// Its Info, Debug, Warn and Error methods match database.Logger, so a
// *Logger can be handed to the storage adapters directly.
type Logger struct {
	// Zap is the underlying zap.Logger instance, exposed for the rare
	// caller that needs Zap-specific functionality.
	Zap *zap.Logger

	tracingEnabled bool
}

// NewLoggerClient initializes and returns a new instance of the logger based on configuration.
//
// The logger writes JSON to stderr with ISO8601 timestamps, capital level
// names, the caller and the pid and service name as default fields.
//
// If initialization fails, the function will call log.Fatal to terminate the application.
func NewLoggerClient(cfg Config) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	service := cfg.ServiceName
	if service == "" {
		service = DefaultServiceName
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(levelOf(cfg.Level)),
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: false,
		Sampling:          nil,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths: []string{
			"stderr",
		},
		ErrorOutputPaths: []string{
			"stderr",
		},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": service,
		},
	}

	logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}

	return &Logger{
		Zap:            logger,
		tracingEnabled: cfg.EnableTracing,
	}
}

// NewFromZap wraps an existing zap logger, for tests and for applications
// that build their own.
func NewFromZap(z *zap.Logger, enableTracing bool) *Logger {
	return &Logger{Zap: z, tracingEnabled: enableTracing}
}

func levelOf(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	}
	return zap.InfoLevel
}
