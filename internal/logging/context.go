package logging

import (
	"context"
	"log/slog"

	"reelchain/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCorrelationID carries the HTTP request identifier.
	FieldCorrelationID = "correlation_id"
	// FieldGenerationID identifies one puzzle generation run.
	FieldGenerationID = "generation_id"
	// FieldSessionID identifies one daemon process lifetime.
	FieldSessionID = "session_id"
	// FieldStep is the 1-based chain position being built.
	FieldStep = "step"
	// FieldMovieID is the TMDB movie identifier.
	FieldMovieID = "movie_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if gid, ok := services.GenerationIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldGenerationID, gid))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
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
	return logger.With(attrsToArgs(fields)...)
}
