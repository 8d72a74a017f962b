package backend

import (
	"github.com/samber/lo"

	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

// Grant returns the role default carried by a role menu
func (r RoleMenu) Grant() permission.Grant {
	return permission.Grant{Read: r.CanRead, Write: r.CanWrite, Update: r.CanUpdate, Delete: r.CanDelete}
}

// Override returns the tri-state override carried by a stored row
func (r RightsAccess) Override() permission.Override {
	return permission.Override{Read: r.CanRead, Write: r.CanWrite, Update: r.CanUpdate, Delete: r.CanDelete}.Clone()
}

// Override returns the tri-state override carried by a save entry
func (p UserMenuPermission) Override() permission.Override {
	return permission.Override{Read: p.CanRead, Write: p.CanWrite, Update: p.CanUpdate, Delete: p.CanDelete}.Clone()
}

// Defaults indexes role menus by menu id
func Defaults(menus []RoleMenu) map[uint]permission.Grant {
	return lo.SliceToMap(menus, func(m RoleMenu) (uint, permission.Grant) {
		return m.MenuID, m.Grant()
	})
}

// Overrides indexes stored rows by menu id
func Overrides(rights []RightsAccess) map[uint]permission.Override {
	return lo.SliceToMap(rights, func(r RightsAccess) (uint, permission.Override) {
		return r.MenuID, r.Override()
	})
}

// UserPermissions converts customized rows into a bulk save payload. Rows
// without any override are skipped.
func UserPermissions(rows []permission.Row) []UserMenuPermission {
	return lo.FilterMap(rows, func(r permission.Row, _ int) (UserMenuPermission, bool) {
		if !r.IsCustomized() {
			return UserMenuPermission{}, false
		}
		o := r.Override.Clone()
		return UserMenuPermission{
			MenuID:    r.MenuID,
			CanRead:   o.Read,
			CanWrite:  o.Write,
			CanUpdate: o.Update,
			CanDelete: o.Delete,
		}, true
	})
}

// RolePermissions converts selected rows into an assignment payload.
// Unselected rows are skipped.
func RolePermissions(rows []permission.SelectionRow) []RoleMenuPermission {
	return lo.FilterMap(rows, func(r permission.SelectionRow, _ int) (RoleMenuPermission, bool) {
		return RoleMenuPermission{
			MenuID:    r.MenuID,
			CanRead:   r.Read,
			CanWrite:  r.Write,
			CanUpdate: r.Update,
			CanDelete: r.Delete,
		}, r.Selected
	})
}

// Grants indexes an assignment payload by menu id, the last entry winning
// for a repeated menu
func Grants(menus []RoleMenuPermission) map[uint]permission.Grant {
	return lo.SliceToMap(menus, func(m RoleMenuPermission) (uint, permission.Grant) {
		return m.MenuID, permission.Grant{Read: m.CanRead, Write: m.CanWrite, Update: m.CanUpdate, Delete: m.CanDelete}
	})
}

// LastPerMenu keeps one entry per menu id, the last one given, at the
// position of the menu's first occurrence
func LastPerMenu[T any](entries []T, menuID func(T) uint) []T {
	last := lo.SliceToMap(entries, func(e T) (uint, T) {
		return menuID(e), e
	})
	order := lo.Uniq(lo.Map(entries, func(e T, _ int) uint { return menuID(e) }))
	return lo.Map(order, func(id uint, _ int) T { return last[id] })
}
