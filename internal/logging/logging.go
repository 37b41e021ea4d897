// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/latticemill/latticemill/core/lattice"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// ConversionIDKey is the context key for conversion IDs.
	ConversionIDKey ContextKey = "conversion_id"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Initialize with a default logger (text format, Info level)
	InitLogger(LevelInfo, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// InitLogger initializes the global logger with the specified level and
// format. Logs go to stderr; stdout is reserved for converted lattice text.
func InitLogger(level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// WithConversionID adds a conversion ID to the context.
func WithConversionID(ctx context.Context, conversionID string) context.Context {
	return context.WithValue(ctx, ConversionIDKey, conversionID)
}

// GetConversionID retrieves the conversion ID from the context.
func GetConversionID(ctx context.Context) string {
	if conversionID, ok := ctx.Value(ConversionIDKey).(string); ok {
		return conversionID
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if conversionID := GetConversionID(ctx); conversionID != "" {
		logger = logger.With("conversion_id", conversionID)
	}
	return logger
}

// Helper functions for common logging patterns

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// DebugContext logs a debug message with context.
func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Debug(msg, args...)
}

// InfoContext logs an info message with context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Info(msg, args...)
}

// WarnContext logs a warning message with context.
func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Warn(msg, args...)
}

// ErrorContext logs an error message with context.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Error(msg, args...)
}

// Conversion logs a completed conversion with common fields.
func Conversion(inputFormat, outputFormat string, elements, diagnostics int, duration time.Duration, args ...any) {
	allArgs := []any{
		"input_format", inputFormat,
		"output_format", outputFormat,
		"elements", elements,
		"diagnostics", diagnostics,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("conversion", allArgs...)
}

// Diagnostics logs each recoverable diagnostic of a conversion report as a
// warning.
func Diagnostics(report *lattice.Report, args ...any) {
	if report == nil {
		return
	}
	for _, d := range report.Diagnostics {
		allArgs := []any{
			"kind", string(d.Kind),
			"name", d.Name,
		}
		if d.Symbol != "" {
			allArgs = append(allArgs, "symbol", d.Symbol)
		}
		allArgs = append(allArgs, args...)
		defaultLogger.Warn(d.Message, allArgs...)
	}
}

// FormatError logs a fatal format handler error.
func FormatError(format, operation string, err error, args ...any) {
	allArgs := []any{
		"format", format,
		"operation", operation,
		"error", err.Error(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Error("format_error", allArgs...)
}

// CatalogEvent logs catalog store operations.
func CatalogEvent(event, id string, args ...any) {
	allArgs := []any{
		"event", event,
		"id", id,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("catalog_event", allArgs...)
}
