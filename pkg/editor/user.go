package editor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/menu"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

// UserRights is the override editor of one user
type UserRights struct {
	backend backend.Backend
	opts    []permission.Option

	user     *backend.User
	roleID   uint
	tree     []menu.Node
	defaults map[uint]permission.Grant
	table    *permission.Table
}

// LoadUserRights fetches the user, then its role defaults, the menu tree
// and its stored overrides, and builds the table
func LoadUserRights(ctx context.Context, b backend.Backend, userID uint, opts ...permission.Option) (*UserRights, error) {
	e := &UserRights{backend: b, opts: opts}
	if err := e.load(ctx, userID); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *UserRights) load(ctx context.Context, userID uint) error {
	user, err := e.backend.User(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	roleID := user.EffectiveRoleID()

	var (
		tree     []menu.Node
		defaults map[uint]permission.Grant
		rights   []backend.RightsAccess
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tree, err = e.backend.MenuTree(gctx)
		if err != nil {
			return fmt.Errorf("failed to load menu tree: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		defaults, err = e.roleDefaults(gctx, roleID)
		return err
	})
	g.Go(func() error {
		var err error
		rights, err = e.backend.UserRights(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load rights of user %d: %w", userID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	e.user = user
	e.roleID = roleID
	e.tree = tree
	e.defaults = defaults
	overrides := backend.Overrides(rights)
	if e.table == nil {
		e.table = permission.NewTable(tree, defaults, overrides, e.opts...)
	} else {
		e.table.Rebuild(tree, defaults, overrides)
	}
	return nil
}

func (e *UserRights) roleDefaults(ctx context.Context, roleID uint) (map[uint]permission.Grant, error) {
	if roleID == 0 {
		return map[uint]permission.Grant{}, nil
	}
	menus, err := e.backend.RoleMenus(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load menus of role %d: %w", roleID, err)
	}
	return backend.Defaults(menus), nil
}

// User returns the loaded user
func (e *UserRights) User() *backend.User {
	return e.user
}

// RoleID returns the role whose defaults the table resolves against
func (e *UserRights) RoleID() uint {
	return e.roleID
}

// Tree returns the loaded menu tree
func (e *UserRights) Tree() []menu.Node {
	return e.tree
}

// Table returns the editable table
func (e *UserRights) Table() *permission.Table {
	return e.table
}

// ChangeRole resolves the table against another role. Overrides currently
// in the table, saved or not, are kept.
func (e *UserRights) ChangeRole(ctx context.Context, roleID uint) error {
	defaults, err := e.roleDefaults(ctx, roleID)
	if err != nil {
		return err
	}
	e.roleID = roleID
	e.defaults = defaults
	e.table.Rebuild(e.tree, defaults, e.currentOverrides())
	return nil
}

// ApplyRoleDefaults replaces the defaults of the current role with ones
// already known, keeping the overrides in the table
func (e *UserRights) ApplyRoleDefaults(defaults map[uint]permission.Grant) {
	e.defaults = defaults
	e.table.Rebuild(e.tree, defaults, e.currentOverrides())
}

func (e *UserRights) currentOverrides() map[uint]permission.Override {
	out := make(map[uint]permission.Override)
	for _, r := range e.table.Customized() {
		out[r.MenuID] = r.Override
	}
	return out
}

// Reload refetches everything and drops unsaved edits
func (e *UserRights) Reload(ctx context.Context) error {
	return e.load(ctx, e.user.ID)
}

// Payload returns the customized rows as a bulk save payload
func (e *UserRights) Payload() []backend.UserMenuPermission {
	return backend.UserPermissions(e.table.Rows())
}

// Save replaces the user's stored overrides with the customized rows and
// rebuilds the table from what the backend returns. Saving with nothing
// customized clears every override.
func (e *UserRights) Save(ctx context.Context) ([]backend.RightsAccess, error) {
	payload := e.Payload()
	saved, err := e.backend.SaveUserRights(ctx, e.user.ID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to save rights of user %d: %w", e.user.ID, err)
	}
	e.table.Rebuild(e.tree, e.defaults, backend.Overrides(saved))
	return saved, nil
}

// Clear deletes every stored override of the user and resets the table
func (e *UserRights) Clear(ctx context.Context) error {
	if err := e.backend.DeleteUserRights(ctx, e.user.ID); err != nil {
		return fmt.Errorf("failed to clear rights of user %d: %w", e.user.ID, err)
	}
	e.table.Rebuild(e.tree, e.defaults, nil)
	return nil
}
