package services

import "context"

type contextKey string

const (
	refidKey contextKey = "refid"
	stateKey contextKey = "state"
)

// WithRefid annotates context with the package identifier.
func WithRefid(ctx context.Context, refid string) context.Context {
	if refid == "" {
		return ctx
	}
	return context.WithValue(ctx, refidKey, refid)
}

// RefidFromContext extracts the package identifier if present.
func RefidFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(refidKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithState annotates context with the orchestrator state name.
func WithState(ctx context.Context, state string) context.Context {
	if state == "" {
		return ctx
	}
	return context.WithValue(ctx, stateKey, state)
}

// StateFromContext returns the orchestrator state name if present.
func StateFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(stateKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
