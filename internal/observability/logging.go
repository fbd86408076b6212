// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// SetGlobalLogger replaces the logger used by RepoLogger and batch logs.
func SetGlobalLogger(l *slog.Logger) {
	GlobalLogger = &Logger{Logger: l}
}

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableRepoLogging  bool
	EnableBatchLogging bool
}

var (
	// Config holds the current logging configuration.
	Config = LoggingConfig{
		EnableRepoLogging:  true,
		EnableBatchLogging: true,
	}
)

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

func (l *RepoLogger) attrs(ctx context.Context, operation string, fields map[string]interface{}) []any {
	attrs := []any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]interface{}) {
	if !Config.EnableRepoLogging {
		return
	}
	GlobalLogger.InfoContext(ctx, "repository create", l.attrs(ctx, "create", fields)...)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]interface{}) {
	if !Config.EnableRepoLogging {
		return
	}
	GlobalLogger.InfoContext(ctx, "repository update", l.attrs(ctx, "update", fields)...)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string, fields map[string]interface{}) {
	if !Config.EnableRepoLogging {
		return
	}
	attrs := append(l.attrs(ctx, operation, fields), slog.String("error", err.Error()))
	GlobalLogger.ErrorContext(ctx, "repository error", attrs...)
}

// LogBatchStart logs the start of a bounded in-request batch such as a fan-out pass.
func LogBatchStart(ctx context.Context, operation string, fields map[string]interface{}) {
	logBatch(ctx, slog.LevelInfo, "batch operation started", operation, "batch_start", nil, fields)
}

// LogBatchEnd logs the completion of a batch.
func LogBatchEnd(ctx context.Context, operation string, fields map[string]interface{}) {
	logBatch(ctx, slog.LevelInfo, "batch operation completed", operation, "batch_end", nil, fields)
}

// LogBatchError logs a failed item within a batch.
func LogBatchError(ctx context.Context, operation string, err error, fields map[string]interface{}) {
	logBatch(ctx, slog.LevelError, "batch operation item failed", operation, "batch_error", err, fields)
}

func logBatch(ctx context.Context, level slog.Level, msg, operation, kind string, err error, fields map[string]interface{}) {
	if !Config.EnableBatchLogging {
		return
	}
	attrs := []any{
		slog.String("operation", operation),
		slog.String("type", kind),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.Log(ctx, level, msg, attrs...)
}
