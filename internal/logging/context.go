package logging

import (
	"context"
	"log/slog"

	"gatekeeper/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRefid is the standardized structured logging key for package identifiers.
	FieldRefid = "refid"
	// FieldState is the standardized structured logging key for orchestrator states.
	FieldState = "state"
	// FieldFormat is the standardized structured logging key for package formats.
	FieldFormat = "format"
	// FieldErrorKind is the standardized structured logging key for error taxonomy kinds.
	FieldErrorKind = "error_kind"
	// FieldOutcome is the standardized structured logging key for terminal job outcomes.
	FieldOutcome = "outcome"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if refid, ok := services.RefidFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRefid, refid))
	}
	if state, ok := services.StateFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldState, state))
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
