package gorm

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
)

// UserRights returns the overrides stored for a user
func (b *Backend) UserRights(ctx context.Context, userID uint) ([]backend.RightsAccess, error) {
	db := b.db.WithContext(ctx)
	if err := b.mustExist(db, "users", "user", userID); err != nil {
		return nil, err
	}
	return b.fetchRights(db, userID)
}

func (b *Backend) fetchRights(db *gorm.DB, userID uint) ([]backend.RightsAccess, error) {
	type rightsRow struct {
		ID             uint
		UserID         uint
		MenuID         uint
		CanRead        *bool
		CanWrite       *bool
		CanUpdate      *bool
		CanDelete      *bool
		CreatedAt      time.Time
		UpdatedAt      time.Time
		MenuName       string
		MenuPath       string
		MenuIcon       string
		MenuOrderIndex int
		MenuParentID   *uint
		MenuIsActive   bool
	}
	var rows []rightsRow
	err := db.Raw(`
		SELECT ra.id, ra.user_id, ra.menu_id, ra.can_read, ra.can_write, ra.can_update, ra.can_delete,
		ra.created_at, ra.updated_at, `+menuSelect+`
		FROM rights_access ra
		JOIN menus m ON m.id = ra.menu_id
		WHERE ra.user_id = ? AND ra.deleted_at IS NULL AND m.deleted_at IS NULL
		ORDER BY m.order_index, m.id
	`, userID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rights of user %d: %w", userID, err)
	}

	result := make([]backend.RightsAccess, 0, len(rows))
	for _, row := range rows {
		result = append(result, backend.RightsAccess{
			ID:        row.ID,
			UserID:    row.UserID,
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

// SaveUserRights replaces every override of a user. Entries with no field
// set are dropped and the last entry wins for a repeated menu.
func (b *Backend) SaveUserRights(ctx context.Context, userID uint, permissions []backend.UserMenuPermission) ([]backend.RightsAccess, error) {
	db := b.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := b.mustExist(tx, "users", "user", userID); err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM rights_access WHERE user_id = ?`, userID).Error; err != nil {
			return fmt.Errorf("failed to clear rights of user %d: %w", userID, err)
		}

		last := backend.LastPerMenu(permissions, func(p backend.UserMenuPermission) uint { return p.MenuID })
		customized := lo.Filter(last, func(p backend.UserMenuPermission, _ int) bool {
			return p.Override().IsCustomized()
		})
		now := time.Now()
		for _, p := range customized {
			err := tx.Exec(`
				INSERT INTO rights_access (user_id, menu_id, can_read, can_write, can_update, can_delete, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, userID, p.MenuID, p.CanRead, p.CanWrite, p.CanUpdate, p.CanDelete, now, now).Error
			if err != nil {
				return fmt.Errorf("failed to save rights of user %d on menu %d: %w", userID, p.MenuID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.fetchRights(db, userID)
}

// DeleteUserRights removes every override of a user
func (b *Backend) DeleteUserRights(ctx context.Context, userID uint) error {
	db := b.db.WithContext(ctx)
	if err := b.mustExist(db, "users", "user", userID); err != nil {
		return err
	}
	if err := db.Exec(`DELETE FROM rights_access WHERE user_id = ?`, userID).Error; err != nil {
		return fmt.Errorf("failed to delete rights of user %d: %w", userID, err)
	}
	return nil
}
