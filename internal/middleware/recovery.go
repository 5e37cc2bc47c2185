package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// internalErrorPage is the only thing a client sees of a panic.
const internalErrorPage = "<h1>500 - Internal Server Error</h1>"

// Recoverer is a middleware that recovers from panics.
// The panic value and stack are logged; the client gets a bare HTML 500.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)

				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(internalErrorPage))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
