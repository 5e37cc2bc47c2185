package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/keydesk/keydesk/internal/auth"
	"github.com/keydesk/keydesk/internal/metrics"
	"github.com/keydesk/keydesk/internal/model"
	"github.com/keydesk/keydesk/internal/repository"
)

// UserStore persists end users and their keys.
type UserStore interface {
	CreateUserWithKey(ctx context.Context, user *model.User, key *model.APIKey) error
	ListUserRows(ctx context.Context) ([]model.UserRow, error)
	DeleteUser(ctx context.Context, id int64) error
}

// KeyService handles end users and their API keys.
type KeyService struct {
	users    UserStore
	validate *validator.Validate
	metrics  metrics.Recorder
	now      func() time.Time
	newKey   func() (string, error)
}

// NewKeyService creates a new KeyService.
func NewKeyService(users UserStore, recorder metrics.Recorder) *KeyService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &KeyService{
		users:    users,
		validate: newValidator(),
		metrics:  recorder,
		now:      time.Now,
		newKey:   auth.GenerateAPIKey,
	}
}

// CreateUserInput defines input for creating a user with a key.
type CreateUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
}

// GenerateKeyPreview returns a fresh random key for display. Nothing is stored.
func (s *KeyService) GenerateKeyPreview() (string, error) {
	key, err := s.newKey()
	if err != nil {
		return "", fmt.Errorf("generate key preview: %w", err)
	}
	s.metrics.IncKeyGenerated(metrics.KeyPreview)
	return key, nil
}

// CreateUserWithKey saves a user together with a newly generated key that
// expires one calendar month from now. Both rows are written atomically.
func (s *KeyService) CreateUserWithKey(ctx context.Context, input CreateUserInput) (*model.User, *model.APIKey, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)

	if err := validateStruct(s.validate, input); err != nil {
		return nil, nil, err
	}

	value, err := s.newKey()
	if err != nil {
		return nil, nil, fmt.Errorf("generate api key: %w", err)
	}

	user := &model.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
	}
	key := &model.APIKey{
		KeyValue:  value,
		ExpiresAt: model.ExpiryFrom(s.now()),
	}

	if err := s.users.CreateUserWithKey(ctx, user, key); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, nil, ErrEmailExists
		}
		return nil, nil, err
	}

	s.metrics.IncUserCreated()
	s.metrics.IncKeyGenerated(metrics.KeyIssued)
	return user, key, nil
}

// ListUsers returns all users newest first with each key's status
// evaluated against a single reading of the clock.
func (s *KeyService) ListUsers(ctx context.Context) ([]model.UserRow, error) {
	rows, err := s.users.ListUserRows(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range rows {
		rows[i].Status = model.StatusAt(now, rows[i].ExpiresAt)
	}

	return rows, nil
}

// DeleteUser removes a user and, through the schema, its keys.
func (s *KeyService) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrUserNotFound
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.metrics.IncUserDeleted()
	return nil
}
