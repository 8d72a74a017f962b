package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is a named bundle of default menu grants
type Role struct {
	ID          uint           `gorm:"column:id;primaryKey"`
	Name        string         `gorm:"column:name;unique;not null;size:50"`
	DisplayName string         `gorm:"column:display_name;not null;size:100"`
	Description string         `gorm:"column:description;size:255"`
	IsDefault   bool           `gorm:"column:is_default;default:false"`
	IsActive    bool           `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Role) TableName() string {
	return "roles"
}
