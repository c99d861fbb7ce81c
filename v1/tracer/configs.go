package tracer

// Config controls the tracer provider.
type Config struct {
	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv is recorded as deployment.environment.
	AppEnv string `yaml:"app_env" envconfig:"APP_ENV"`

	// EnableExport sends spans over OTLP/HTTP. The exporter reads its
	// endpoint and headers from the standard OTEL_EXPORTER_OTLP_* variables.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`

	// RecordStatements adds the statement template to storage spans as
	// db.statement.
	RecordStatements bool `yaml:"record_statements" envconfig:"TRACER_RECORD_STATEMENTS"`
}
