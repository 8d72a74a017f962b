package policy

import (
	"github.com/samber/lo"

	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

// ExportUser returns the customized rows of a user's table as a !user
// statement
func ExportUser(userID uint, table *permission.Table) User {
	return User{
		ID: userID,
		Overrides: lo.Map(table.Customized(), func(r permission.Row, _ int) UserOverride {
			o := r.Override.Clone()
			return UserOverride{
				MenuRef: MenuRef{Menu: r.MenuID, Path: r.MenuPath},
				Read:    o.Read,
				Write:   o.Write,
				Update:  o.Update,
				Delete:  o.Delete,
			}
		}),
	}
}

// ExportRole returns the selected rows of a role's selection as a !role
// statement
func ExportRole(roleID uint, selection *permission.Selection) Role {
	return Role{
		ID: roleID,
		Menus: lo.Map(selection.Selected(), func(r permission.SelectionRow, _ int) RoleMenu {
			return RoleMenu{
				MenuRef: MenuRef{Menu: r.MenuID, Path: r.MenuPath},
				Read:    r.Read,
				Write:   r.Write,
				Update:  r.Update,
				Delete:  r.Delete,
			}
		}),
	}
}
