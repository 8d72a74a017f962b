// Package permission resolves per-menu permissions for the rights editors.
//
// A role grants a baseline of four actions (read, write, update, delete) on
// each menu. A user may carry per-menu overrides where each action is either
// unset (inherit the role default) or explicitly allowed or denied. The
// effective value of an action is the override when present, otherwise the
// role default.
//
// # Override editor
//
// Table holds one Row per menu and implements the editing operations of the
// user form:
//
//	table := permission.NewTable(tree, defaults, overrides,
//	    permission.WithOnChange(func(rows []permission.Row) { ... }))
//	table.Cycle(menuID, permission.ActionWrite) // inherit -> !default
//	table.Cycle(menuID, permission.ActionWrite) // true -> false
//	table.Cycle(menuID, permission.ActionWrite) // false -> inherit
//	custom := table.Customized()                 // rows worth persisting
//
// # Role editor
//
// Selection is the two-state variant used when editing a role: a menu is
// either selected, with four independent flags, or unselected with all flags
// cleared.
//
// Tables are plain in-memory values. They never fail and never modify the
// inputs they were built from. They are not safe for concurrent use.
package permission
