package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/keydesk/keydesk/internal/model"
	"github.com/keydesk/keydesk/internal/service"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, creds service.Credentials) (*model.Admin, error) {
	args := m.Called(creds)
	admin, _ := args.Get(0).(*model.Admin)
	return admin, args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, creds service.Credentials) (*service.LoginResult, error) {
	args := m.Called(creds)
	res, _ := args.Get(0).(*service.LoginResult)
	return res, args.Error(1)
}

func (m *MockAccountService) Logout(ctx context.Context, token string) error {
	args := m.Called(token)
	return args.Error(0)
}

type MockKeyService struct {
	mock.Mock
}

func (m *MockKeyService) GenerateKeyPreview() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockKeyService) CreateUserWithKey(ctx context.Context, input service.CreateUserInput) (*model.User, *model.APIKey, error) {
	args := m.Called(input)
	user, _ := args.Get(0).(*model.User)
	key, _ := args.Get(1).(*model.APIKey)
	return user, key, args.Error(2)
}

func (m *MockKeyService) ListUsers(ctx context.Context) ([]model.UserRow, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]model.UserRow)
	return rows, args.Error(1)
}

func (m *MockKeyService) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(id)
	return args.Error(0)
}
