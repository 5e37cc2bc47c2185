package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/keydesk/keydesk/internal/handler/dto"
	"github.com/keydesk/keydesk/internal/middleware"
	"github.com/keydesk/keydesk/internal/model"
	"github.com/keydesk/keydesk/internal/service"
)

// minLoginDuration is the floor on every login response so that the
// outcome cannot be told apart by timing.
const minLoginDuration = 200 * time.Millisecond

// AccountService is the admin account behaviour the handlers rely on.
type AccountService interface {
	Register(ctx context.Context, creds service.Credentials) (*model.Admin, error)
	Login(ctx context.Context, creds service.Credentials) (*service.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// AuthHandler handles admin registration, login and logout.
type AuthHandler struct {
	accounts         AccountService
	cookie           CookieConfig
	logger           *slog.Logger
	minLoginDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts AccountService, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:         accounts,
		cookie:           cookie,
		logger:           logger,
		minLoginDuration: minLoginDuration,
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	admin, err := h.accounts.Register(r.Context(), service.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		writeServiceError(w, r, h.logger, err, "registration failed")
		return
	}

	h.logger.Info("admin_registered",
		slog.Int64("admin_id", admin.ID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	writeSuccess(w)
}

// Login handles POST /login. On success the session cookie is set.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		if elapsed := time.Since(start); elapsed < h.minLoginDuration {
			time.Sleep(h.minLoginDuration - elapsed)
		}
	}()

	var req dto.CredentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), service.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("authentication failed",
				slog.String("reason", err.Error()),
				slog.String("ip", r.RemoteAddr),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
		}
		writeServiceError(w, r, h.logger, err, "server error")
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, int(h.cookie.TTL.Seconds())))

	h.logger.Info("authentication successful",
		slog.Int64("admin_id", result.Session.AdminID),
		slog.String("session_id", result.Session.ID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	writeSuccess(w)
}

// Logout handles POST /logout. It always clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookie.Name); err == nil && cookie.Value != "" {
		if err := h.accounts.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error("logout failed",
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
		}
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	writeSuccess(w)
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
