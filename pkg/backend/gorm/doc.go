// Package gorm implements backend.Backend directly on the PostgreSQL schema
// described in pkg/model.
//
// Saves replace a user's overrides or a role's menus inside one transaction.
// Override rows are hard-deleted so the (user_id, menu_id) unique index
// never collides with a soft-deleted row.
package gorm
