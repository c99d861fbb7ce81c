package database

// Logger is the logging surface the database packages depend on. It matches
// the method set of the std/v1/logger client so that client can be passed in
// directly.

//go:generate mockgen -source=logger.go -destination=mock_logger.go -package=database
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// NopLogger discards everything. It is used when no logger is configured.
type NopLogger struct{}

func (NopLogger) Info(string, error, ...map[string]interface{})  {}
func (NopLogger) Debug(string, error, ...map[string]interface{}) {}
func (NopLogger) Warn(string, error, ...map[string]interface{})  {}
func (NopLogger) Error(string, error, ...map[string]interface{}) {}
