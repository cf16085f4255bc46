package logging

import (
	"context"
	"log/slog"

	"squish/internal/services"
)

const (
	// FieldComponent names the subsystem emitting a line.
	FieldComponent = "component"
	// FieldRunID identifies one invocation of the tool.
	FieldRunID = "run_id"
	// FieldJobID identifies one artifact job inside a run.
	FieldJobID = "job_id"
	// FieldStage is the stage label currently executing.
	FieldStage = "stage"
	// FieldArtifact is the path of the artifact being optimized.
	FieldArtifact = "artifact"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if id, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldJobID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if path, ok := services.ArtifactFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldArtifact, path))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
