package audit

import (
	"database/sql"
	"os"

	_ "github.com/lib/pq"
)

// Store persists audit records to the audit_logs table
type Store struct {
	db *sql.DB
}

// NewStore connects to AUDIT_DATABASE_URL. It returns a nil store when the
// variable is not set.
func NewStore() (*Store, error) {
	dbURL := os.Getenv("AUDIT_DATABASE_URL")
	if dbURL == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// NewStoreWithDB creates a store with an existing database connection
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save inserts one record. Empty text columns are stored as NULL.
func (s *Store) Save(r Record) error {
	if s.db == nil {
		return nil
	}

	var userID sql.NullInt64
	if r.UserID != nil {
		userID = sql.NullInt64{Int64: int64(*r.UserID), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO audit_logs (user_id, username, action, resource_type, resource_id, old_values, new_values, ip_address, user_agent, correlation_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		userID,
		r.Username,
		r.Action,
		r.ResourceType,
		nullString(r.ResourceID),
		nullString(r.OldValues),
		nullString(r.NewValues),
		nullString(r.IPAddress),
		nullString(r.UserAgent),
		nullString(r.CorrelationID),
		r.Timestamp,
	)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// DB returns the underlying database connection
func (s *Store) DB() *sql.DB {
	return s.db
}
