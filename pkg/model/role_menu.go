package model

import "time"

// RoleMenu grants a role default permissions on a menu
type RoleMenu struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	RoleID    uint      `gorm:"column:role_id;not null;uniqueIndex:idx_role_menu"`
	MenuID    uint      `gorm:"column:menu_id;not null;uniqueIndex:idx_role_menu"`
	CanRead   bool      `gorm:"column:can_read;default:false"`
	CanWrite  bool      `gorm:"column:can_write;default:false"`
	CanUpdate bool      `gorm:"column:can_update;default:false"`
	CanDelete bool      `gorm:"column:can_delete;default:false"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Menu Menu `gorm:"foreignKey:MenuID"`
}

func (RoleMenu) TableName() string {
	return "role_menus"
}
