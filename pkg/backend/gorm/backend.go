package gorm

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/menu"
	"github.com/doodlesbykumbi/rights-console/pkg/model"
)

// Ensure Backend implements backend.Backend
var _ backend.Backend = (*Backend)(nil)
var _ backend.HealthChecker = (*Backend)(nil)

// Backend implements backend.Backend using GORM
type Backend struct {
	db *gorm.DB
}

// New creates a new Backend
func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// CheckConnectivity verifies database connectivity
func (b *Backend) CheckConnectivity(ctx context.Context) error {
	return b.db.WithContext(ctx).Exec("SELECT 1").Error
}

// MenuTree returns the active menus ordered by order_index
func (b *Backend) MenuTree(ctx context.Context) ([]menu.Node, error) {
	var menus []model.Menu
	err := b.db.WithContext(ctx).Raw(`
		SELECT id, name, path, icon, order_index, parent_id, is_active
		FROM menus
		WHERE is_active = true AND deleted_at IS NULL
		ORDER BY order_index, id
	`).Scan(&menus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menus: %w", err)
	}

	flat := make([]menu.Node, 0, len(menus))
	for _, m := range menus {
		flat = append(flat, m.Node())
	}
	return menu.BuildTree(flat), nil
}

func (b *Backend) exists(db *gorm.DB, table string, id uint) (bool, error) {
	var exists bool
	err := db.Raw(
		fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = ? AND deleted_at IS NULL)`, table), id,
	).Scan(&exists).Error
	return exists, err
}

func (b *Backend) mustExist(db *gorm.DB, table, kind string, id uint) error {
	ok, err := b.exists(db, table, id)
	if err != nil {
		return fmt.Errorf("failed to look up %s %d: %w", kind, id, err)
	}
	if !ok {
		return fmt.Errorf("%s %d: %w", kind, id, backend.ErrNotFound)
	}
	return nil
}

// joinedMenu is the menus columns selected alongside role_menus and
// rights_access rows
type joinedMenu struct {
	MenuName       string
	MenuPath       string
	MenuIcon       string
	MenuOrderIndex int
	MenuParentID   *uint
	MenuIsActive   bool
}

func (c joinedMenu) node(id uint) menu.Node {
	return menu.Node{
		ID:         id,
		Name:       c.MenuName,
		Path:       c.MenuPath,
		Icon:       c.MenuIcon,
		OrderIndex: c.MenuOrderIndex,
		ParentID:   c.MenuParentID,
		IsActive:   c.MenuIsActive,
	}
}

const menuSelect = `m.name AS menu_name, m.path AS menu_path, m.icon AS menu_icon,
		m.order_index AS menu_order_index, m.parent_id AS menu_parent_id, m.is_active AS menu_is_active`

// RoleMenus returns the menus assigned to a role
func (b *Backend) RoleMenus(ctx context.Context, roleID uint) ([]backend.RoleMenu, error) {
	db := b.db.WithContext(ctx)
	if err := b.mustExist(db, "roles", "role", roleID); err != nil {
		return nil, err
	}

	type roleMenuRow struct {
		ID             uint
		RoleID         uint
		MenuID         uint
		CanRead        bool
		CanWrite       bool
		CanUpdate      bool
		CanDelete      bool
		CreatedAt      time.Time
		UpdatedAt      time.Time
		MenuName       string
		MenuPath       string
		MenuIcon       string
		MenuOrderIndex int
		MenuParentID   *uint
		MenuIsActive   bool
	}
	var rows []roleMenuRow
	err := db.Raw(`
		SELECT rm.id, rm.role_id, rm.menu_id, rm.can_read, rm.can_write, rm.can_update, rm.can_delete,
		rm.created_at, rm.updated_at, `+menuSelect+`
		FROM role_menus rm
		JOIN menus m ON m.id = rm.menu_id
		WHERE rm.role_id = ? AND m.deleted_at IS NULL
		ORDER BY m.order_index, m.id
	`, roleID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menus of role %d: %w", roleID, err)
	}

	result := make([]backend.RoleMenu, 0, len(rows))
	for _, row := range rows {
		result = append(result, backend.RoleMenu{
			ID:        row.ID,
			RoleID:    row.RoleID,
			MenuID:    row.MenuID,
			CanRead:   row.CanRead,
			CanWrite:  row.CanWrite,
			CanUpdate: row.CanUpdate,
			CanDelete: row.CanDelete,
			Menu:      joinedMenu{row.MenuName, row.MenuPath, row.MenuIcon, row.MenuOrderIndex, row.MenuParentID, row.MenuIsActive}.node(row.MenuID),
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return result, nil
}

// AssignRoleMenus replaces every menu assigned to a role
func (b *Backend) AssignRoleMenus(ctx context.Context, roleID uint, menus []backend.RoleMenuPermission) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := b.mustExist(tx, "roles", "role", roleID); err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM role_menus WHERE role_id = ?`, roleID).Error; err != nil {
			return fmt.Errorf("failed to clear menus of role %d: %w", roleID, err)
		}

		now := time.Now()
		for _, m := range backend.LastPerMenu(menus, func(m backend.RoleMenuPermission) uint { return m.MenuID }) {
			err := tx.Exec(`
				INSERT INTO role_menus (role_id, menu_id, can_read, can_write, can_update, can_delete, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, roleID, m.MenuID, m.CanRead, m.CanWrite, m.CanUpdate, m.CanDelete, now, now).Error
			if err != nil {
				return fmt.Errorf("failed to assign menu %d to role %d: %w", m.MenuID, roleID, err)
			}
		}
		return nil
	})
}
