// Package model defines the database models of the permission schema.
//
// The tables mirror the backend API's schema so the database backend can
// run against the same PostgreSQL database:
//
//   - menus: navigation tree (parent_id, order_index, is_active)
//   - roles: named bundles of default grants
//   - users: accounts, each holding one role
//   - role_menus: per-role default grants on a menu
//   - rights_access: per-user tri-state overrides, unique on (user_id, menu_id)
//   - audit_logs: recorded changes, read by the audit log viewer
//   - email_logs: emails sent by the backend, read by the email log viewer
//
// Menus, roles, users and rights_access carry a deleted_at column and are
// soft-deleted by GORM unless Unscoped is used.
package model
