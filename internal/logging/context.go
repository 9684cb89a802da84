package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldFile is the standardized structured logging key for the file being processed.
	FieldFile = "file"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized structured logging key for run identifiers.
	FieldRunID = "run_id"
)

type contextKey int

const (
	fileContextKey contextKey = iota
	stageContextKey
	runIDContextKey
)

// WithFile annotates the context with the file currently being processed.
func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, fileContextKey, path)
}

// WithStage annotates the context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageContextKey, stage)
}

// WithRunID annotates the context with the journal run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDContextKey, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if file, ok := ctx.Value(fileContextKey).(string); ok && file != "" {
		fields = append(fields, slog.String(FieldFile, file))
	}
	if stage, ok := ctx.Value(stageContextKey).(string); ok && stage != "" {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if id, ok := ctx.Value(runIDContextKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
