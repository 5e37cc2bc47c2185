package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keydesk/keydesk/internal/handler/dto"
	"github.com/keydesk/keydesk/internal/model"
	"github.com/keydesk/keydesk/internal/service"
)

func newUserHandler(t *testing.T) (*UserHandler, *MockKeyService) {
	t.Helper()
	keys := new(MockKeyService)
	t.Cleanup(func() { keys.AssertExpectations(t) })
	return NewUserHandler(keys, testLogger()), keys
}

func TestUserHandler_List(t *testing.T) {
	h, keys := newUserHandler(t)

	key := "abc123"
	expires := time.Date(2024, time.February, 29, 10, 0, 0, 0, time.UTC)
	keys.On("ListUsers").Return([]model.UserRow{
		{UserID: 2, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.test", APIKey: &key, ExpiresAt: &expires, Status: model.StatusActive},
		{UserID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.test", Status: model.StatusExpired},
	}, nil).Once()

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var rows []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 2)
	assert.Equal(t, float64(2), rows[0]["user_id"])
	assert.Equal(t, "abc123", rows[0]["api_key"])
	assert.Equal(t, "Active", rows[0]["status"])
	assert.Nil(t, rows[1]["api_key"])
	assert.Equal(t, "Expired", rows[1]["status"])
}

func TestUserHandler_ListEmptyIsArray(t *testing.T) {
	h, keys := newUserHandler(t)
	keys.On("ListUsers").Return(nil, nil).Once()

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUserHandler_ListFailure(t *testing.T) {
	h, keys := newUserHandler(t)
	keys.On("ListUsers").Return(nil, errors.New("conn closed")).Once()

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to load data", decodeError(t, rec).Message)
}

func TestUserHandler_GenerateKey(t *testing.T) {
	h, keys := newUserHandler(t)
	keys.On("GenerateKeyPreview").Return(strings.Repeat("ab", 64), nil).Once()

	rec := httptest.NewRecorder()
	h.GenerateKey(rec, httptest.NewRequest(http.MethodPost, "/api/generate-key", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.GenerateKeyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.APIKey, 128)
}

func TestUserHandler_Save(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"saved", nil, http.StatusOK, ""},
		{"missing field", &service.ValidationError{Message: "all fields are required"}, http.StatusBadRequest, "all fields are required"},
		{"duplicate", service.ErrEmailExists, http.StatusBadRequest, "email already registered"},
		{"storage", errors.New("tx aborted"), http.StatusInternalServerError, "failed to save data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, keys := newUserHandler(t)
			input := service.CreateUserInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.test"}
			if tt.err != nil {
				keys.On("CreateUserWithKey", input).Return(nil, nil, tt.err).Once()
			} else {
				keys.On("CreateUserWithKey", input).
					Return(&model.User{ID: 1}, &model.APIKey{ID: 1, UserID: 1}, nil).Once()
			}

			rec := httptest.NewRecorder()
			h.Save(rec, jsonRequest(http.MethodPost, "/api/save-user",
				`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.test"}`))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg == "" {
				assert.JSONEq(t, `{"success":true}`, rec.Body.String())
				return
			}
			assert.Equal(t, tt.wantMsg, decodeError(t, rec).Message)
		})
	}
}

func TestUserHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		param      string
		wantID     int64
		err        error
		wantStatus int
	}{
		{"deleted", "7", 7, nil, http.StatusOK},
		{"not found", "99", 99, service.ErrUserNotFound, http.StatusNotFound},
		{"non numeric", "abc", 0, service.ErrUserNotFound, http.StatusNotFound},
		{"storage", "7", 7, errors.New("deadlock detected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, keys := newUserHandler(t)
			keys.On("DeleteUser", tt.wantID).Return(tt.err).Once()

			r := chi.NewRouter()
			r.Delete("/api/delete-user/{id}", h.Delete)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/delete-user/"+tt.param, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestUserHandler_SaveMalformed(t *testing.T) {
	h, keys := newUserHandler(t)

	rec := httptest.NewRecorder()
	h.Save(rec, jsonRequest(http.MethodPost, "/api/save-user", `not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	keys.AssertNotCalled(t, "CreateUserWithKey", mock.Anything)
}
