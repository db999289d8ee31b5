// Package log provides a structured logging interface for lowrank model fitting
// and the experiment harness.
//
// The interface is slog-compatible so the backend can be swapped. The default
// backend is zerolog (see NewZerologLogger); the CLI can also install the
// slog JSON handler through SetupLogger.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "RFF",
//	    log.RankKey, 30,
//	)
//	logger.Info("Fit completed",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 1000,
//	)

package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key-value pairs. An error value may be
// passed as the first field of Error; backends render it under the "error" key.
type Logger interface {
	// Debug logs a debug-level message, e.g. per-gamma sampling details.
	Debug(msg string, fields ...any)

	// Info logs an info-level message.
	//
	// Example:
	//   logger.Info("Fit completed",
	//       log.DurationMsKey, 54,
	//       log.RankKey, 30,
	//   )
	Info(msg string, fields ...any)

	// Warn logs a warning-level message, e.g. a degenerate ridge solve.
	Warn(msg string, fields ...any)

	// Error logs an error-level message.
	//
	// Example:
	//   logger.Error("Combination failed",
	//       err,
	//       log.MethodKey, "ICD",
	//       log.RankKey, 12,
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Use it to skip expensive diagnostics such as condition numbers.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
// This type allows for level-based filtering of log messages.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4  // Detailed diagnostic information
	LevelInfo  Level = 0   // General operational information
	LevelWarn  Level = 4   // Warning conditions
	LevelError Level = 8   // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider defines an interface for creating and configuring loggers.
// This interface allows for dependency injection and testing with different
// logger implementations.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a specific name/component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}