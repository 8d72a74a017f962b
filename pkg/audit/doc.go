// Package audit records permission changes made through the console.
//
// Every change becomes a Record shaped like a row of the audit_logs table:
// who made it, the action, the resource it touched, JSON snapshots of the
// old and new values, and the request origin. Records are written to
// stdout as logrus JSON lines and, when AUDIT_DATABASE_URL is set,
// inserted into audit_logs of that database.
//
// # Event Types
//
//   - OverrideEvent: a user override was cycled (UPDATE) or reset (RESET)
//   - SaveEvent: user overrides were saved (SAVE) or cleared (DELETE), or
//     role menus assigned (ASSIGN)
//   - PolicyEvent: a rights document was applied (APPLY) or validated
//     (VALIDATE)
//
// Failed attempts carry a _FAILED suffix on the action.
//
// # Usage
//
//	audit.Log(audit.SaveEvent{
//	    Origin:  audit.Origin{Actor: "cli"},
//	    Kind:    audit.SaveUserRights,
//	    Target:  12,
//	    Count:   3,
//	    Success: true,
//	})
//
// Audit logging is disabled with RIGHTS_AUDIT_ENABLED=false.
package audit
