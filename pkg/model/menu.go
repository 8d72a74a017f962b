package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rights-console/pkg/menu"
)

// Menu is a navigation entry
type Menu struct {
	ID         uint           `gorm:"column:id;primaryKey"`
	Name       string         `gorm:"column:name;not null;size:100"`
	Path       string         `gorm:"column:path;size:255"`
	Icon       string         `gorm:"column:icon;size:100"`
	OrderIndex int            `gorm:"column:order_index;default:0"`
	ParentID   *uint          `gorm:"column:parent_id;index"`
	IsActive   bool           `gorm:"column:is_active;default:true"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Menu) TableName() string {
	return "menus"
}

// Node returns the menu without children
func (m Menu) Node() menu.Node {
	var parent *uint
	if m.ParentID != nil {
		p := *m.ParentID
		parent = &p
	}
	return menu.Node{
		ID:         m.ID,
		Name:       m.Name,
		Path:       m.Path,
		Icon:       m.Icon,
		OrderIndex: m.OrderIndex,
		ParentID:   parent,
		IsActive:   m.IsActive,
	}
}
