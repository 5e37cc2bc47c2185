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

// AdminStore persists admin accounts.
type AdminStore interface {
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
}

// SessionStore issues and revokes admin sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, adminID int64, email string, ttl time.Duration) (string, *model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// AccountService handles admin registration, login and logout.
type AccountService struct {
	admins     AdminStore
	sessions   SessionStore
	sessionTTL time.Duration
	validate   *validator.Validate
	metrics    metrics.Recorder
}

// NewAccountService creates a new AccountService.
func NewAccountService(admins AdminStore, sessions SessionStore, sessionTTL time.Duration, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		admins:     admins,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		validate:   newValidator(),
		metrics:    recorder,
	}
}

// Credentials is the body of register and login requests.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginResult carries the cookie token for a new session.
type LoginResult struct {
	Token   string
	Session *model.Session
}

// Register creates an admin account with an Argon2id password hash.
func (s *AccountService) Register(ctx context.Context, creds Credentials) (*model.Admin, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validateStruct(s.validate, creds); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, &ValidationError{Message: fmt.Sprintf("password must be at most %d characters", auth.MaxPasswordLen)}
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.Admin{Email: creds.Email, PasswordHash: hash}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.metrics.IncAdminRegistered()
	return admin, nil
}

// Login verifies credentials and opens a session.
// Unknown emails and wrong passwords both return ErrInvalidCredentials
// after the same amount of hashing work.
func (s *AccountService) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	email := strings.TrimSpace(creds.Email)

	if email == "" || creds.Password == "" || auth.PasswordTooLong(creds.Password) {
		auth.VerifyDummy(creds.Password)
		return nil, s.loginFailed()
	}

	admin, err := s.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			auth.VerifyDummy(creds.Password)
			return nil, s.loginFailed()
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(creds.Password, admin.PasswordHash)
	if err != nil {
		// Unreadable hash: report like any other failure but keep the cause.
		s.metrics.IncLoginAttempt(metrics.LoginFailure)
		return nil, fmt.Errorf("%w: admin %d: %v", ErrInvalidCredentials, admin.ID, err)
	}
	if !ok {
		return nil, s.loginFailed()
	}

	token, session, err := s.sessions.CreateSession(ctx, admin.ID, admin.Email, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.IncLoginAttempt(metrics.LoginSuccess)
	return &LoginResult{Token: token, Session: session}, nil
}

// Logout revokes the session behind token. Unknown tokens are ignored.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *AccountService) loginFailed() error {
	s.metrics.IncLoginAttempt(metrics.LoginFailure)
	return ErrInvalidCredentials
}
