// Package policy reads and applies rights documents.
//
// A rights document is a YAML sequence of tagged statements. A !role
// statement replaces the menus assigned to a role together with their
// default grants. A !user statement replaces every override of a user.
//
// # Example Document
//
//   - !role
//     id: 3
//     menus:
//   - path: /users-management
//     read: true
//     write: true
//   - !user
//     id: 12
//     overrides:
//   - path: /audit-logs
//     read: false
//   - menu: 7
//     delete: true
//
// Menus are referenced by id (menu) or by route (path). When both are given
// they must name the same menu. An override entry leaving every action unset
// inherits the role entirely and is dropped.
//
// # Loading Documents
//
//	result, err := policy.NewLoader(backend).Load(ctx, statements)
//	if err != nil {
//	    var unresolved *policy.UnresolvedError
//	    if errors.As(err, &unresolved) {
//	        // unresolved.Refs lists the menu references that matched nothing
//	    }
//	}
//
// Every reference is resolved before anything is written, so a document
// with an unknown menu changes nothing.
package policy
