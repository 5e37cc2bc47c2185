package auth

import (
	"context"

	"github.com/keydesk/keydesk/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionContextKey contextKey = "admin_session"

// ContextWithSession adds the admin session to the context.
func ContextWithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves the admin session from the context.
// Returns nil if not present.
func SessionFromContext(ctx context.Context) *model.Session {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return nil
	}
	return session
}

// AdminIDFromContext returns the signed-in admin id, or 0 when unauthenticated.
func AdminIDFromContext(ctx context.Context) int64 {
	session := SessionFromContext(ctx)
	if session == nil {
		return 0
	}
	return session.AdminID
}
