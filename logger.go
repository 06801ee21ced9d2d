package modregistry

// Logger defines the interface for registry logging.
// The registry uses structured logging with key-value pairs so implementing
// applications can control how registry logs appear.
//
// The Logger interface uses variadic arguments in key-value pairs:
//
//	logger.Info("message", "key1", "value1", "key2", "value2")
//
// This approach is compatible with popular structured logging libraries
// like slog, logrus, zap, and others.
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	// Used for normal lifecycle events like module registration.
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	// Used for failures that should be noted, such as observer panics.
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	// Used for refused operations, such as a disable blocked by dependents.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	// Used for detailed diagnostic information like gating decisions.
	Debug(msg string, args ...any)
}

// noopLogger is the default logger when none is supplied via WithLogger.
type noopLogger struct{}

func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Debug(msg string, args ...any) {}
