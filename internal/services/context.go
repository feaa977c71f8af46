package services

import "context"

type contextKey string

const (
	sessionIDKey   contextKey = "session_id"
	sessionNameKey contextKey = "session_name"
)

// WithSessionID annotates context with the capture session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSessionName annotates context with the sanitized session name.
func WithSessionName(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionNameKey, name)
}

// SessionNameFromContext extracts the session name if present.
func SessionNameFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionNameKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
