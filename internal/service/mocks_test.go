package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/keydesk/keydesk/internal/model"
)

type MockAdminStore struct {
	mock.Mock
}

func (m *MockAdminStore) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	args := m.Called(admin)
	return args.Error(0)
}

func (m *MockAdminStore) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	args := m.Called(email)
	admin, _ := args.Get(0).(*model.Admin)
	return admin, args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) CreateSession(ctx context.Context, adminID int64, email string, ttl time.Duration) (string, *model.Session, error) {
	args := m.Called(adminID, email, ttl)
	session, _ := args.Get(1).(*model.Session)
	return args.String(0), session, args.Error(2)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(token)
	return args.Error(0)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) CreateUserWithKey(ctx context.Context, user *model.User, key *model.APIKey) error {
	args := m.Called(user, key)
	return args.Error(0)
}

func (m *MockUserStore) ListUserRows(ctx context.Context) ([]model.UserRow, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]model.UserRow)
	return rows, args.Error(1)
}

func (m *MockUserStore) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(id)
	return args.Error(0)
}
