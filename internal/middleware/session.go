package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/keydesk/keydesk/internal/auth"
	"github.com/keydesk/keydesk/internal/cache"
	"github.com/keydesk/keydesk/internal/metrics"
	"github.com/keydesk/keydesk/internal/model"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// SessionLookup resolves a cookie token to a live session.
type SessionLookup interface {
	GetSession(ctx context.Context, token string) (*model.Session, error)
}

// SessionConfig holds configuration for the session gate.
type SessionConfig struct {
	Logger     *slog.Logger
	Sessions   SessionLookup
	CookieName string
	Metrics    metrics.Recorder
}

// RequireSession returns a middleware that only lets requests with a live
// admin session through. Everything else is redirected to the login page.
// The session is injected into the request context for handlers.
func RequireSession(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deny := func(reason string) {
				cfg.Metrics.IncSessionDenied()
				cfg.Logger.Info("session required",
					slog.String("reason", reason),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				http.Redirect(w, r, LoginPath, http.StatusFound)
			}

			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				deny("missing_cookie")
				return
			}

			session, err := cfg.Sessions.GetSession(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, cache.ErrSessionNotFound) {
					deny("invalid_session")
					return
				}
				cfg.Logger.Error("session lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				deny("store_error")
				return
			}

			ctx := auth.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
