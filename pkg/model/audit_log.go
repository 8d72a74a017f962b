package model

import (
	"time"

	"gorm.io/gorm"
)

// AuditLog is one recorded change. user_id is kept without a foreign key
// so records outlive the user.
type AuditLog struct {
	ID            uint           `gorm:"column:id;primaryKey"`
	UserID        *uint          `gorm:"column:user_id;index"`
	Username      string         `gorm:"column:username;size:255"`
	Action        string         `gorm:"column:action;size:50;not null;index"`
	ResourceType  string         `gorm:"column:resource_type;size:100;not null"`
	ResourceID    *string        `gorm:"column:resource_id;size:255"`
	OldValues     *string        `gorm:"column:old_values;type:text"`
	NewValues     *string        `gorm:"column:new_values;type:text"`
	IPAddress     *string        `gorm:"column:ip_address;size:45"`
	UserAgent     *string        `gorm:"column:user_agent;type:text"`
	CorrelationID *string        `gorm:"column:correlation_id;size:255;index"`
	Timestamp     time.Time      `gorm:"column:timestamp;not null;index"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
