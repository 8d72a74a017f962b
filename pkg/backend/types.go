package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/doodlesbykumbi/rights-console/pkg/menu"
)

// Role is a named bundle of default menu grants
type Role struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"is_default"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// User is an account holding one role
type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	RoleID    uint      `json:"role_id,omitempty"`
	Role      *Role     `json:"role,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveRoleID returns the role id from RoleID or the embedded role
func (u User) EffectiveRoleID() uint {
	if u.RoleID != 0 {
		return u.RoleID
	}
	if u.Role != nil {
		return u.Role.ID
	}
	return 0
}

// RoleMenu is a menu assigned to a role with its default grants
type RoleMenu struct {
	ID        uint      `json:"id"`
	RoleID    uint      `json:"role_id"`
	MenuID    uint      `json:"menu_id"`
	CanRead   bool      `json:"can_read"`
	CanWrite  bool      `json:"can_write"`
	CanUpdate bool      `json:"can_update"`
	CanDelete bool      `json:"can_delete"`
	Menu      menu.Node `json:"menu"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RightsAccess is a stored user override. A nil field inherits the role
// default.
type RightsAccess struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	MenuID    uint      `json:"menu_id"`
	CanRead   *bool     `json:"can_read"`
	CanWrite  *bool     `json:"can_write"`
	CanUpdate *bool     `json:"can_update"`
	CanDelete *bool     `json:"can_delete"`
	Menu      menu.Node `json:"menu"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserMenuPermission is one entry of a bulk override save
type UserMenuPermission struct {
	MenuID    uint  `json:"menu_id"`
	CanRead   *bool `json:"can_read"`
	CanWrite  *bool `json:"can_write"`
	CanUpdate *bool `json:"can_update"`
	CanDelete *bool `json:"can_delete"`
}

// RoleMenuPermission is one entry of a role menu assignment
type RoleMenuPermission struct {
	MenuID    uint `json:"menu_id"`
	CanRead   bool `json:"can_read"`
	CanWrite  bool `json:"can_write"`
	CanUpdate bool `json:"can_update"`
	CanDelete bool `json:"can_delete"`
}

// ListParams selects a page of a listing
type ListParams struct {
	Page     int    `url:"page,omitempty"`
	PageSize int    `url:"pageSize,omitempty"`
	Search   string `url:"search,omitempty"`
	SortBy   string `url:"sortBy,omitempty"`
	SortDesc bool   `url:"sortDesc,omitempty"`
}

// Page is one page of a listing
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// AuditLog is one recorded change. OldValues and NewValues hold JSON
// documents.
type AuditLog struct {
	ID            uint      `json:"id"`
	UserID        *uint     `json:"user_id,omitempty"`
	Username      string    `json:"username"`
	Action        string    `json:"action"`
	ResourceType  string    `json:"resource_type"`
	ResourceID    string    `json:"resource_id"`
	OldValues     string    `json:"old_values,omitempty"`
	NewValues     string    `json:"new_values,omitempty"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent"`
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// Audit log listing bounds
const (
	DefaultAuditLogLimit = 20
	MaxAuditLogLimit     = 100
)

// AuditLogQuery filters the audit log. Username matches case-insensitively
// on a substring, every other filter matches exactly.
type AuditLogQuery struct {
	UserID        *uint     `url:"user_id,omitempty"`
	Username      string    `url:"username,omitempty"`
	Action        string    `url:"action,omitempty"`
	ResourceType  string    `url:"resource_type,omitempty"`
	ResourceID    string    `url:"resource_id,omitempty"`
	IPAddress     string    `url:"ip_address,omitempty"`
	CorrelationID string    `url:"correlation_id,omitempty"`
	StartDate     time.Time `url:"start_date,omitempty"`
	EndDate       time.Time `url:"end_date,omitempty"`
	Page          int       `url:"page,omitempty"`
	Limit         int       `url:"limit,omitempty"`
	SortBy        string    `url:"sort_by,omitempty"`
	SortOrder     string    `url:"sort_order,omitempty"`
}

// Normalized returns the query with paging and sorting defaults applied:
// the first page of 20 records, newest first. Limit is capped at 100.
func (q AuditLogQuery) Normalized() AuditLogQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.Limit < 1:
		q.Limit = DefaultAuditLogLimit
	case q.Limit > MaxAuditLogLimit:
		q.Limit = MaxAuditLogLimit
	}
	if q.SortBy == "" {
		q.SortBy = "timestamp"
	}
	if !strings.EqualFold(q.SortOrder, "asc") {
		q.SortOrder = "desc"
	} else {
		q.SortOrder = "asc"
	}
	return q
}

// Email delivery states
const (
	EmailStatusPending = "pending"
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
)

// EmailLog is one email sent by the backend
type EmailLog struct {
	ID             uint       `json:"id"`
	TemplateID     *uint      `json:"template_id,omitempty"`
	TemplateName   string     `json:"template_name"`
	From           string     `json:"from"`
	To             Recipients `json:"to"`
	Cc             Recipients `json:"cc,omitempty"`
	Bcc            Recipients `json:"bcc,omitempty"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"`
	ResendID       string     `json:"resend_id,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	SentByUserID   *uint      `json:"sent_by_user_id,omitempty"`
	SentByUsername string     `json:"sent_by_username"`
	IPAddress      string     `json:"ip_address"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Recipients is a list of addresses. The backend stores it as a JSON array
// in a text column, and listings return that text as is, so both a JSON
// array and a string holding one are accepted.
type Recipients []string

func (r *Recipients) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		return r.Scan(raw)
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("invalid recipients: %w", err)
	}
	*r = list
	return nil
}

// Scan reads the stored text form. An empty string is no recipients.
func (r *Recipients) Scan(value any) error {
	var raw string
	switch v := value.(type) {
	case nil:
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported recipients type %T", value)
	}
	if strings.TrimSpace(raw) == "" {
		*r = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return fmt.Errorf("invalid recipients %q: %w", raw, err)
	}
	*r = list
	return nil
}

// EmailLogQuery selects a page of the email log. Search matches recipients,
// subject, template name and sender.
type EmailLogQuery struct {
	ListParams
	Status string `url:"status,omitempty"`
}
