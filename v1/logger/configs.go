package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

type Config struct {
	// Level is one of debug, info, warning or error. Anything else is info.
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL"`

	// ServiceName is attached to every entry as "service".
	// Default: "coach-storage"
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`

	// EnableTracing adds trace_id and span_id to entries logged through the
	// *WithContext methods when the context carries a span.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`
}

// DefaultServiceName is used when Config.ServiceName is empty.
const DefaultServiceName = "coach-storage"
