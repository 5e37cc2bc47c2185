package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/keydesk/keydesk/internal/auth"
	"github.com/keydesk/keydesk/internal/handler/dto"
	"github.com/keydesk/keydesk/internal/middleware"
	"github.com/keydesk/keydesk/internal/model"
	"github.com/keydesk/keydesk/internal/service"
)

// KeyService is the user and key behaviour the handlers rely on.
type KeyService interface {
	GenerateKeyPreview() (string, error)
	CreateUserWithKey(ctx context.Context, input service.CreateUserInput) (*model.User, *model.APIKey, error)
	ListUsers(ctx context.Context) ([]model.UserRow, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserHandler handles end users and their API keys.
type UserHandler struct {
	keys   KeyService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(keys KeyService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		keys:   keys,
		logger: logger,
	}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.keys.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to load data")
		return
	}
	if rows == nil {
		rows = []model.UserRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// GenerateKey handles POST /api/generate-key. The key is a preview only.
func (h *UserHandler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.GenerateKeyPreview()
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to generate key")
		return
	}
	writeJSON(w, http.StatusOK, dto.GenerateKeyResponse{APIKey: key})
}

// Save handles POST /api/save-user.
func (h *UserHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, key, err := h.keys.CreateUserWithKey(r.Context(), service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to save data")
		return
	}

	h.logger.Info("user_created",
		slog.Int64("user_id", user.ID),
		slog.Int64("api_key_id", key.ID),
		slog.Time("expires_at", key.ExpiresAt),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	writeSuccess(w)
}

// Delete handles DELETE /api/delete-user/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		// Cannot match any row.
		id = 0
	}

	if err := h.keys.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err, "failed to delete user")
		return
	}

	h.logger.Info("user_deleted",
		slog.Int64("user_id", id),
		slog.Int64("admin_id", auth.AdminIDFromContext(r.Context())),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	writeSuccess(w)
}
