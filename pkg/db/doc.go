// Package db provides database connection and migration utilities.
//
// # Connection
//
//	database, err := db.Connect(db.Config{LogLevel: cfg.LogLevel})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string, used when Config.URL is empty
//
// SQL statements are logged by GORM when the log level is debug or trace.
//
// # Migrations
//
// The schema migrations are embedded from the top-level db package and
// applied with golang-migrate. The version is tracked in the
// rights_schema_migrations table so the schema can share a database with
// other migration tools.
package db
