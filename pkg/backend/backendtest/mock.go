// Package backendtest provides a testify mock of backend.Backend.
package backendtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/menu"
)

// Ensure MockBackend implements backend.Backend
var _ backend.Backend = (*MockBackend)(nil)

// MockBackend implements backend.Backend for testing using testify/mock
type MockBackend struct {
	mock.Mock
}

func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (m *MockBackend) MenuTree(ctx context.Context) ([]menu.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.Node), args.Error(1)
}

func (m *MockBackend) RoleMenus(ctx context.Context, roleID uint) ([]backend.RoleMenu, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.RoleMenu), args.Error(1)
}

func (m *MockBackend) AssignRoleMenus(ctx context.Context, roleID uint, menus []backend.RoleMenuPermission) error {
	args := m.Called(ctx, roleID, menus)
	return args.Error(0)
}

func (m *MockBackend) UserRights(ctx context.Context, userID uint) ([]backend.RightsAccess, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.RightsAccess), args.Error(1)
}

func (m *MockBackend) SaveUserRights(ctx context.Context, userID uint, permissions []backend.UserMenuPermission) ([]backend.RightsAccess, error) {
	args := m.Called(ctx, userID, permissions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.RightsAccess), args.Error(1)
}

func (m *MockBackend) DeleteUserRights(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockBackend) User(ctx context.Context, userID uint) (*backend.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.User), args.Error(1)
}

func (m *MockBackend) Role(ctx context.Context, roleID uint) (*backend.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Role), args.Error(1)
}

func (m *MockBackend) ActiveRoles(ctx context.Context) ([]backend.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.Role), args.Error(1)
}

func (m *MockBackend) ListUsers(ctx context.Context, params backend.ListParams) (*backend.Page[backend.User], error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Page[backend.User]), args.Error(1)
}

func (m *MockBackend) AuditLogs(ctx context.Context, query backend.AuditLogQuery) (*backend.Page[backend.AuditLog], error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Page[backend.AuditLog]), args.Error(1)
}

func (m *MockBackend) EmailLogs(ctx context.Context, query backend.EmailLogQuery) (*backend.Page[backend.EmailLog], error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Page[backend.EmailLog]), args.Error(1)
}

func (m *MockBackend) EmailLog(ctx context.Context, id uint) (*backend.EmailLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.EmailLog), args.Error(1)
}
