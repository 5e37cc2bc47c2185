package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/keydesk/keydesk/internal/auth"
	"github.com/keydesk/keydesk/internal/metrics"
	"github.com/keydesk/keydesk/internal/model"
	"github.com/keydesk/keydesk/internal/repository"
)

const testTTL = 24 * time.Hour

func newAccountService(t *testing.T) (*AccountService, *MockAdminStore, *MockSessionStore, *metrics.InMemoryRecorder) {
	t.Helper()
	admins := new(MockAdminStore)
	sessions := new(MockSessionStore)
	rec := metrics.NewInMemory()
	t.Cleanup(func() {
		admins.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})
	return NewAccountService(admins, sessions, testTTL, rec), admins, sessions, rec
}

func TestRegister_HashesPassword(t *testing.T) {
	t.Parallel()
	svc, admins, _, rec := newAccountService(t)

	admins.On("CreateAdmin", mock.MatchedBy(func(a *model.Admin) bool {
		return a.Email == "root@example.test" && a.PasswordHash != "supersecret"
	})).Return(nil).Once()

	admin, err := svc.Register(context.Background(), Credentials{Email: "  root@example.test ", Password: "supersecret"})
	require.NoError(t, err)

	ok, err := auth.VerifyPassword("supersecret", admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok, "stored hash should verify the original password")
	assert.Equal(t, uint64(1), rec.Snapshot().AdminsRegistered)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, admins, _, _ := newAccountService(t)

	admins.On("CreateAdmin", mock.Anything).Return(repository.ErrEmailExists).Once()

	_, err := svc.Register(context.Background(), Credentials{Email: "root@example.test", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_StorageFailure(t *testing.T) {
	t.Parallel()
	svc, admins, _, _ := newAccountService(t)

	boom := errors.New("connection reset")
	admins.On("CreateAdmin", mock.Anything).Return(boom).Once()

	_, err := svc.Register(context.Background(), Credentials{Email: "root@example.test", Password: "supersecret"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrEmailExists)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		creds Credentials
		msg   string
	}{
		{"missing email", Credentials{Password: "supersecret"}, msgMissingField},
		{"blank email", Credentials{Email: "   ", Password: "supersecret"}, msgMissingField},
		{"missing password", Credentials{Email: "a@example.test"}, msgMissingField},
		{"bad email", Credentials{Email: "not-an-email", Password: "supersecret"}, msgInvalidEmail},
		{"short password", Credentials{Email: "a@example.test", Password: "short"}, "password must be at least 8 characters"},
		{"long password", Credentials{Email: "a@example.test", Password: strings.Repeat("é", 129)}, "password must be at most 128 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _, _, _ := newAccountService(t)

			_, err := svc.Register(context.Background(), tt.creds)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.msg, vErr.Message)
		})
	}
}

func TestRegister_MultiByteThenLogin(t *testing.T) {
	t.Parallel()
	svc, admins, sessions, _ := newAccountService(t)
	password := strings.Repeat("é", 100)

	var stored *model.Admin
	admins.On("CreateAdmin", mock.AnythingOfType("*model.Admin")).
		Run(func(args mock.Arguments) { stored = args.Get(0).(*model.Admin) }).
		Return(nil).Once()

	_, err := svc.Register(context.Background(), Credentials{Email: "a@example.test", Password: password})
	require.NoError(t, err)
	require.NotNil(t, stored)

	admins.On("GetAdminByEmail", "a@example.test").Return(stored, nil).Once()
	sessions.On("CreateSession", stored.ID, "a@example.test", testTTL).
		Return("tok", &model.Session{ID: "01HZZ", AdminID: stored.ID}, nil).Once()

	res, err := svc.Login(context.Background(), Credentials{Email: "a@example.test", Password: password})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	svc, admins, sessions, rec := newAccountService(t)

	hash, err := auth.HashPassword("supersecret")
	require.NoError(t, err)

	admins.On("GetAdminByEmail", "root@example.test").
		Return(&model.Admin{ID: 5, Email: "root@example.test", PasswordHash: hash}, nil).Once()
	session := &model.Session{ID: "01HZY", AdminID: 5}
	sessions.On("CreateSession", int64(5), "root@example.test", testTTL).Return("tok", session, nil).Once()

	res, err := svc.Login(context.Background(), Credentials{Email: "root@example.test", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Same(t, session, res.Session)
	assert.Equal(t, uint64(1), rec.Snapshot().LoginSuccess)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	t.Parallel()
	svc, admins, _, rec := newAccountService(t)

	hash, err := auth.HashPassword("supersecret")
	require.NoError(t, err)

	admins.On("GetAdminByEmail", "ghost@example.test").Return(nil, repository.ErrAdminNotFound).Once()
	admins.On("GetAdminByEmail", "root@example.test").
		Return(&model.Admin{ID: 5, Email: "root@example.test", PasswordHash: hash}, nil).Once()

	_, unknownErr := svc.Login(context.Background(), Credentials{Email: "ghost@example.test", Password: "supersecret"})
	_, wrongErr := svc.Login(context.Background(), Credentials{Email: "root@example.test", Password: "not-the-one"})

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, uint64(2), rec.Snapshot().LoginFailure)
}

func TestLogin_LegacyBcryptHash(t *testing.T) {
	t.Parallel()
	svc, admins, sessions, _ := newAccountService(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	admins.On("GetAdminByEmail", "old@example.test").
		Return(&model.Admin{ID: 9, Email: "old@example.test", PasswordHash: string(legacy)}, nil).Twice()
	sessions.On("CreateSession", int64(9), "old@example.test", testTTL).
		Return("tok", &model.Session{AdminID: 9}, nil).Once()

	_, err = svc.Login(context.Background(), Credentials{Email: "old@example.test", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login(context.Background(), Credentials{Email: "old@example.test", Password: "legacy-pass"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
}

func TestLogin_EmptyInput(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newAccountService(t)

	_, err := svc.Login(context.Background(), Credentials{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_StorageFailureIsNotAuthError(t *testing.T) {
	t.Parallel()
	svc, admins, _, _ := newAccountService(t)

	boom := errors.New("pool exhausted")
	admins.On("GetAdminByEmail", "root@example.test").Return(nil, boom).Once()

	_, err := svc.Login(context.Background(), Credentials{Email: "root@example.test", Password: "supersecret"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_CorruptHash(t *testing.T) {
	t.Parallel()
	svc, admins, _, _ := newAccountService(t)

	admins.On("GetAdminByEmail", "root@example.test").
		Return(&model.Admin{ID: 5, Email: "root@example.test", PasswordHash: "garbage"}, nil).Once()

	_, err := svc.Login(context.Background(), Credentials{Email: "root@example.test", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	svc, _, sessions, _ := newAccountService(t)

	sessions.On("DeleteSession", "tok").Return(nil).Once()
	require.NoError(t, svc.Logout(context.Background(), "tok"))

	sessions.On("DeleteSession", "bad").Return(errors.New("redis down")).Once()
	assert.Error(t, svc.Logout(context.Background(), "bad"))
}
