package model

import (
	"time"

	"gorm.io/gorm"
)

// RightsAccess is a per-user override on a menu. A nil column inherits the
// role default.
type RightsAccess struct {
	ID        uint           `gorm:"column:id;primaryKey"`
	UserID    uint           `gorm:"column:user_id;not null;uniqueIndex:idx_user_menu_rights"`
	MenuID    uint           `gorm:"column:menu_id;not null;uniqueIndex:idx_user_menu_rights"`
	CanRead   *bool          `gorm:"column:can_read"`
	CanWrite  *bool          `gorm:"column:can_write"`
	CanUpdate *bool          `gorm:"column:can_update"`
	CanDelete *bool          `gorm:"column:can_delete"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`

	Menu Menu `gorm:"foreignKey:MenuID"`
}

func (RightsAccess) TableName() string {
	return "rights_access"
}
