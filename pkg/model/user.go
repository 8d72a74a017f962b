package model

import (
	"time"

	"gorm.io/gorm"
)

// User is an account holding one role
type User struct {
	ID        uint           `gorm:"column:id;primaryKey"`
	Username  string         `gorm:"column:username;unique;not null;size:50"`
	Email     string         `gorm:"column:email;unique;not null;size:100"`
	Name      string         `gorm:"column:name;size:100"`
	RoleID    uint           `gorm:"column:role_id;index"`
	IsActive  bool           `gorm:"column:is_active;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`

	Role *Role `gorm:"foreignKey:RoleID"`
}

func (User) TableName() string {
	return "users"
}
