// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger so packages can hang extra methods off it.
type Logger struct {
	*slog.Logger
}

// GlobalLogger emits JSON records to stdout at info level and above.
var GlobalLogger *Logger

func init() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	GlobalLogger = &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stdout, opts))}
}

// LogContextKey types the context keys owned by this package.
type LogContextKey string

// CorrelationID ties together every log line emitted for one background job.
const CorrelationID LogContextKey = "correlation_id"

// WithCorrelationID stamps the context with a correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID reads the correlation ID back out, or "" when unset.
func ExtractCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(CorrelationID).(string)
	return id
}

func asyncAttrs(ctx context.Context, operation, kind string, fields map[string]interface{}) []any {
	attrs := make([]any, 0, len(fields)+3)
	attrs = append(attrs,
		slog.String("operation", operation),
		slog.String("type", kind),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// LogAsyncOperationStart marks the start of a background job.
func LogAsyncOperationStart(ctx context.Context, operation string, fields map[string]interface{}) {
	GlobalLogger.InfoContext(ctx, "async operation started", asyncAttrs(ctx, operation, "async_start", fields)...)
}

// LogAsyncOperationEnd marks a background job finishing cleanly.
func LogAsyncOperationEnd(ctx context.Context, operation string, fields map[string]interface{}) {
	GlobalLogger.InfoContext(ctx, "async operation completed", asyncAttrs(ctx, operation, "async_end", fields)...)
}

// LogAsyncOperationError records a background job failure.
func LogAsyncOperationError(ctx context.Context, operation string, err error, fields map[string]interface{}) {
	attrs := asyncAttrs(ctx, operation, "async_error", fields)
	attrs = append(attrs, slog.String("error", err.Error()))
	GlobalLogger.ErrorContext(ctx, "async operation failed", attrs...)
}
