package editor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/menu"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

// RoleMenus is the menu assignment editor of one role
type RoleMenus struct {
	backend backend.Backend
	opts    []permission.Option

	roleID    uint
	role      *backend.Role
	tree      []menu.Node
	selection *permission.Selection
}

// LoadRoleMenus fetches the role, the menu tree and the role's menus
func LoadRoleMenus(ctx context.Context, b backend.Backend, roleID uint, opts ...permission.Option) (*RoleMenus, error) {
	e := &RoleMenus{backend: b, opts: opts, roleID: roleID}

	var (
		role     *backend.Role
		tree     []menu.Node
		assigned []backend.RoleMenu
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		role, err = b.Role(gctx, roleID)
		if err != nil {
			return fmt.Errorf("failed to load role %d: %w", roleID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tree, err = b.MenuTree(gctx)
		if err != nil {
			return fmt.Errorf("failed to load menu tree: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assigned, err = b.RoleMenus(gctx, roleID)
		if err != nil {
			return fmt.Errorf("failed to load menus of role %d: %w", roleID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.role = role
	e.tree = tree
	e.selection = permission.NewSelection(tree, backend.Defaults(assigned), opts...)
	return e, nil
}

// Role returns the loaded role
func (e *RoleMenus) Role() *backend.Role {
	return e.role
}

// Selection returns the editable selection
func (e *RoleMenus) Selection() *permission.Selection {
	return e.selection
}

// Payload returns the selected rows as an assignment payload
func (e *RoleMenus) Payload() []backend.RoleMenuPermission {
	return backend.RolePermissions(e.selection.Rows())
}

// Save replaces the role's menus with the selected rows and rebuilds the
// selection from what was sent. An empty selection is saved too and removes
// every menu from the role.
func (e *RoleMenus) Save(ctx context.Context) error {
	payload := e.Payload()
	if err := e.backend.AssignRoleMenus(ctx, e.roleID, payload); err != nil {
		return fmt.Errorf("failed to save menus of role %d: %w", e.roleID, err)
	}
	e.selection = permission.NewSelection(e.tree, backend.Grants(payload), e.opts...)
	return nil
}

// Reload refetches the role's menus and drops unsaved edits
func (e *RoleMenus) Reload(ctx context.Context) error {
	assigned, err := e.backend.RoleMenus(ctx, e.roleID)
	if err != nil {
		return fmt.Errorf("failed to reload menus of role %d: %w", e.roleID, err)
	}
	e.selection = permission.NewSelection(e.tree, backend.Defaults(assigned), e.opts...)
	return nil
}
