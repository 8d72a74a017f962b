package model

import "time"

// EmailLog is one email sent by the backend. To, Cc and Bcc hold JSON
// arrays of addresses.
type EmailLog struct {
	ID             uint       `gorm:"column:id;primaryKey"`
	TemplateID     *uint      `gorm:"column:template_id"`
	TemplateName   *string    `gorm:"column:template_name;size:100"`
	From           string     `gorm:"column:from;size:255;not null"`
	To             string     `gorm:"column:to;type:text;not null"`
	Cc             *string    `gorm:"column:cc;type:text"`
	Bcc            *string    `gorm:"column:bcc;type:text"`
	Subject        string     `gorm:"column:subject;size:500"`
	Status         string     `gorm:"column:status;size:20;not null;default:pending"`
	ResendID       *string    `gorm:"column:resend_id;size:100"`
	ErrorMessage   *string    `gorm:"column:error_message;type:text"`
	SentByUserID   *uint      `gorm:"column:sent_by_user_id"`
	SentByUsername *string    `gorm:"column:sent_by_username;size:100"`
	IPAddress      *string    `gorm:"column:ip_address;size:45"`
	SentAt         *time.Time `gorm:"column:sent_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}
