package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/menu"
)

// MenuTree fetches GET /menus/tree
func (c *Client) MenuTree(ctx context.Context) ([]menu.Node, error) {
	var tree []menu.Node
	if err := c.do(ctx, http.MethodGet, "/menus/tree", nil, nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// RoleMenus fetches GET /role/{id}/menus
func (c *Client) RoleMenus(ctx context.Context, roleID uint) ([]backend.RoleMenu, error) {
	var menus []backend.RoleMenu
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/role/%d/menus", roleID), nil, nil, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// AssignRoleMenus posts the full set to POST /role/{id}/menus
func (c *Client) AssignRoleMenus(ctx context.Context, roleID uint, menus []backend.RoleMenuPermission) error {
	if menus == nil {
		menus = []backend.RoleMenuPermission{}
	}
	body := struct {
		Menus []backend.RoleMenuPermission `json:"menus"`
	}{menus}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/role/%d/menus", roleID), nil, body, nil)
}

// UserRights fetches GET /rights-access/user/{id}
func (c *Client) UserRights(ctx context.Context, userID uint) ([]backend.RightsAccess, error) {
	var rights []backend.RightsAccess
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/rights-access/user/%d", userID), nil, nil, &rights); err != nil {
		return nil, err
	}
	return rights, nil
}

// SaveUserRights posts POST /rights-access/user/{id}/bulk. An empty list is
// sent as [] and clears every override.
func (c *Client) SaveUserRights(ctx context.Context, userID uint, permissions []backend.UserMenuPermission) ([]backend.RightsAccess, error) {
	if permissions == nil {
		permissions = []backend.UserMenuPermission{}
	}
	body := struct {
		Permissions []backend.UserMenuPermission `json:"permissions"`
	}{permissions}

	var rights []backend.RightsAccess
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/rights-access/user/%d/bulk", userID), nil, body, &rights); err != nil {
		return nil, err
	}
	return rights, nil
}

// DeleteUserRights calls DELETE /rights-access/user/{id}
func (c *Client) DeleteUserRights(ctx context.Context, userID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/rights-access/user/%d", userID), nil, nil, nil)
}

// User fetches GET /user/{id}
func (c *Client) User(ctx context.Context, userID uint) (*backend.User, error) {
	var user backend.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/user/%d", userID), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Role fetches GET /role/{id}
func (c *Client) Role(ctx context.Context, roleID uint) (*backend.Role, error) {
	var role backend.Role
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/role/%d", roleID), nil, nil, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// ActiveRoles fetches GET /roles/active
func (c *Client) ActiveRoles(ctx context.Context) ([]backend.Role, error) {
	var roles []backend.Role
	if err := c.do(ctx, http.MethodGet, "/roles/active", nil, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// ListUsers fetches GET /users
func (c *Client) ListUsers(ctx context.Context, params backend.ListParams) (*backend.Page[backend.User], error) {
	var page backend.Page[backend.User]
	if err := c.do(ctx, http.MethodGet, "/users", params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AuditLogs fetches GET /audit/logs
func (c *Client) AuditLogs(ctx context.Context, query backend.AuditLogQuery) (*backend.Page[backend.AuditLog], error) {
	var page backend.Page[backend.AuditLog]
	if err := c.do(ctx, http.MethodGet, "/audit/logs", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// EmailLogs fetches GET /email/logs
func (c *Client) EmailLogs(ctx context.Context, query backend.EmailLogQuery) (*backend.Page[backend.EmailLog], error) {
	var page backend.Page[backend.EmailLog]
	if err := c.do(ctx, http.MethodGet, "/email/logs", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// EmailLog fetches GET /email/log/{id}
func (c *Client) EmailLog(ctx context.Context, id uint) (*backend.EmailLog, error) {
	var log backend.EmailLog
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/email/log/%d", id), nil, nil, &log); err != nil {
		return nil, err
	}
	return &log, nil
}
