package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/keydesk/keydesk/internal/middleware"
	"github.com/keydesk/keydesk/internal/service"
)

// writeServiceError maps service errors to status codes. Anything
// unrecognised is logged and reported with the opaque fallback message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusBadRequest, service.ErrEmailExists.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, service.ErrUserNotFound.Error())
	default:
		logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
}
