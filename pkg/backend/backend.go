package backend

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/rights-console/pkg/menu"
)

var (
	// ErrNotFound is returned when a user, role or menu does not exist
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the backend rejects the credentials
	ErrUnauthorized = errors.New("unauthorized")
)

// Backend is the source of menus, role defaults and user overrides
type Backend interface {
	// MenuTree returns the active menus as a tree
	MenuTree(ctx context.Context) ([]menu.Node, error)

	// RoleMenus returns the menus assigned to a role with their grants
	RoleMenus(ctx context.Context, roleID uint) ([]RoleMenu, error)

	// AssignRoleMenus replaces the menus assigned to a role
	AssignRoleMenus(ctx context.Context, roleID uint, menus []RoleMenuPermission) error

	// UserRights returns the overrides stored for a user
	UserRights(ctx context.Context, userID uint) ([]RightsAccess, error)

	// SaveUserRights replaces every override of a user and returns the
	// stored rows. An empty list clears all overrides.
	SaveUserRights(ctx context.Context, userID uint, permissions []UserMenuPermission) ([]RightsAccess, error)

	// DeleteUserRights removes every override of a user
	DeleteUserRights(ctx context.Context, userID uint) error

	// User returns a user with its role
	User(ctx context.Context, userID uint) (*User, error)

	// Role returns a role
	Role(ctx context.Context, roleID uint) (*Role, error)

	// ActiveRoles returns every active role
	ActiveRoles(ctx context.Context) ([]Role, error)

	// ListUsers returns one page of users
	ListUsers(ctx context.Context, params ListParams) (*Page[User], error)

	// AuditLogs returns one page of recorded changes, newest first unless
	// the query sorts otherwise
	AuditLogs(ctx context.Context, query AuditLogQuery) (*Page[AuditLog], error)

	// EmailLogs returns one page of sent emails
	EmailLogs(ctx context.Context, query EmailLogQuery) (*Page[EmailLog], error)

	// EmailLog returns one sent email
	EmailLog(ctx context.Context, id uint) (*EmailLog, error)
}

// HealthChecker is implemented by backends able to report connectivity
type HealthChecker interface {
	CheckConnectivity(ctx context.Context) error
}
