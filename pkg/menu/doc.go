// Package menu models the navigation menu tree that permissions are granted on.
//
// Menus form a tree with unique ids and arbitrary depth. Editors work on the
// flattened form, where every entry carries a breadcrumb built from its
// ancestors:
//
//	entries := menu.Flatten(tree)
//	for _, e := range entries {
//	    fmt.Println(e.DisplayName) // "Settings / Users"
//	}
//
// BuildTree turns the flat list stored by the backend back into a tree.
package menu
