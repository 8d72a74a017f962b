package gorm

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/model"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var userSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"username":   "username",
	"email":      "email",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func toRole(r model.Role) backend.Role {
	return backend.Role{
		ID:          r.ID,
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Description: r.Description,
		IsDefault:   r.IsDefault,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toUser(u model.User) backend.User {
	return backend.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		RoleID:    u.RoleID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

const roleColumns = `id, name, display_name, description, is_default, is_active, created_at, updated_at`
const userColumns = `id, username, email, name, role_id, is_active, created_at, updated_at`

// Role returns a role
func (b *Backend) Role(ctx context.Context, roleID uint) (*backend.Role, error) {
	return b.role(b.db.WithContext(ctx), roleID)
}

func (b *Backend) role(db *gorm.DB, roleID uint) (*backend.Role, error) {
	var r model.Role
	res := db.Raw(`SELECT `+roleColumns+` FROM roles WHERE id = ? AND deleted_at IS NULL`, roleID).Scan(&r)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch role %d: %w", roleID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("role %d: %w", roleID, backend.ErrNotFound)
	}
	role := toRole(r)
	return &role, nil
}

// ActiveRoles returns every active role ordered by id
func (b *Backend) ActiveRoles(ctx context.Context) ([]backend.Role, error) {
	var roles []model.Role
	err := b.db.WithContext(ctx).Raw(
		`SELECT ` + roleColumns + ` FROM roles WHERE is_active = true AND deleted_at IS NULL ORDER BY id`,
	).Scan(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active roles: %w", err)
	}

	result := make([]backend.Role, 0, len(roles))
	for _, r := range roles {
		result = append(result, toRole(r))
	}
	return result, nil
}

// User returns a user with its role
func (b *Backend) User(ctx context.Context, userID uint) (*backend.User, error) {
	db := b.db.WithContext(ctx)

	var u model.User
	res := db.Raw(`SELECT `+userColumns+` FROM users WHERE id = ? AND deleted_at IS NULL`, userID).Scan(&u)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, backend.ErrNotFound)
	}

	user := toUser(u)
	if u.RoleID != 0 {
		role, err := b.role(db, u.RoleID)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	return &user, nil
}

// ListUsers returns one page of users. Search matches name, username and
// email case-insensitively.
func (b *Backend) ListUsers(ctx context.Context, params backend.ListParams) (*backend.Page[backend.User], error) {
	db := b.db.WithContext(ctx)

	page := params.Page
	if page < 1 {
		page = 1
	}
	size := params.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	where := ` WHERE deleted_at IS NULL`
	var args []interface{}
	if search := strings.TrimSpace(params.Search); search != "" {
		where += ` AND (name ILIKE ? OR username ILIKE ? OR email ILIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	if err := db.Raw(`SELECT COUNT(*) FROM users`+where, args...).Scan(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	order, ok := userSortColumns[params.SortBy]
	if !ok {
		order = "id"
	}
	if params.SortDesc {
		order += " DESC"
	}

	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	var users []model.User
	if err := db.Raw(query, append(args, size, (page-1)*size)...).Scan(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := &backend.Page[backend.User]{
		Data:       make([]backend.User, 0, len(users)),
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}
	for _, u := range users {
		result.Data = append(result.Data, toUser(u))
	}
	return result, nil
}
