// Package logger provides the structured logging contract for the ESG compliance service.
// Implementations live in the infrastructure layer; this package only carries the interface
// so domain and application code stay independent of the concrete backend.
package logger

import "context"

// ================================================================================
// Logger Interface
// ================================================================================

// Fields is a set of structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields ...Fields)

	// Info logs an informational message
	Info(ctx context.Context, msg string, fields ...Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields ...Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields ...Fields)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields creates a new logger with additional base fields
	WithFields(fields Fields) Logger

	// WithComponent creates a new logger tagged with a component name
	WithComponent(component string) Logger

	// ForContext returns the request-scoped logger stored in ctx, or the receiver
	ForContext(ctx context.Context) Logger
}

// Merge flattens several field sets into one; later keys win.
func Merge(fields ...Fields) Fields {
	out := Fields{}
	for _, f := range fields {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}
