// Command rightsctl inspects and edits the menu permissions of users and
// roles, and runs the rights console server.
//
// A user's effective permission on a menu is resolved per action: an
// explicit override wins, otherwise the role default applies.
//
// # Quick Start
//
//	# Point the CLI at the permission API
//	export RIGHTS_API_URL=https://api.example.com/api/v1
//	export RIGHTS_API_TOKEN=...
//
//	# Show the effective rights of user 12
//	rightsctl user rights 12
//
//	# Apply a rights document
//	rightsctl policy load rights.yml
//
//	# Recent changes made by ali
//	rightsctl audit list --username ali
//
//	# Start the console server
//	rightsctl server
//
// # Environment Variables
//
//   - RIGHTS_BACKEND: api (default) or database
//   - RIGHTS_API_URL, RIGHTS_API_TOKEN: permission API settings
//   - DATABASE_URL: PostgreSQL connection string for the database backend
//   - AUDIT_DATABASE_URL: enables persisting audit records to audit_logs
//   - RIGHTS_LOG_LEVEL: Log level (debug, info, warn, error)
//   - RIGHTS_READ_ONLY: reject every mutation
//   - PORT: Server port (default: 8080)
package main
