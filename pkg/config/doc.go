// Package config provides configuration management for the rights console.
//
// Configuration is loaded from a YAML file and then overlaid with
// environment variables. Every attribute remembers where its value came
// from (default, file or environment), which `rightsctl configuration show`
// prints.
//
// # Configuration Sources
//
//   - $RIGHTS_CONFIG_PATH/rights.yml, default /etc/rights-console/rights.yml
//   - Environment variables, which take precedence
//
// # Key Configuration Options
//
//   - RIGHTS_BACKEND: "api" (remote API) or "database" (direct PostgreSQL)
//   - RIGHTS_API_URL, RIGHTS_API_TOKEN: remote API and bearer token
//   - DATABASE_URL: database for the database backend and migrations
//   - AUDIT_DATABASE_URL: optional audit_logs database
//   - RIGHTS_LOG_LEVEL: logging verbosity
//   - PORT: console server listen port
package config
