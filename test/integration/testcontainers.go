package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rights-console/pkg/db"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	DatabaseURL string
	HTTPClient  *http.Client
	InlineMode  bool
	BinaryPath  string
	Console     *ServerInstance
}

// NewTestContext creates a new test context with PostgreSQL testcontainer.
// Modes:
//   - Binary mode (default): Set RIGHTS_BINARY to the path of the rightsctl binary
//   - Inline mode: Set RIGHTS_INLINE=1 to run the server in-process (no binary needed)
func NewTestContext(ctx context.Context) (*TestContext, error) {
	inlineMode := os.Getenv("RIGHTS_INLINE") == "1"
	binaryPath := os.Getenv("RIGHTS_BINARY")

	if !inlineMode && binaryPath == "" {
		return nil, fmt.Errorf("Either RIGHTS_BINARY or RIGHTS_INLINE=1 is required.\n\nBinary mode:\n  go build -o rightsctl ./cmd/rightsctl\n  INTEGRATION_TEST=1 RIGHTS_BINARY=$(pwd)/rightsctl go test -v ./test/integration/...\n\nInline mode:\n  INTEGRATION_TEST=1 RIGHTS_INLINE=1 go test -v ./test/integration/...")
	}

	if !inlineMode {
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("RIGHTS_BINARY path does not exist: %s", binaryPath)
		}
		binaryPath, _ = filepath.Abs(binaryPath)
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("rights_test"),
		tcpostgres.WithUsername("rights"),
		tcpostgres.WithPassword("rights"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if _, _, err := db.MigrateUp(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Connect with GORM for test setup/assertions
	database, err := db.Connect(db.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}
	rawDB, err := database.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	tc := &TestContext{
		DB:          database,
		RawDB:       rawDB,
		Container:   pgContainer,
		DatabaseURL: connStr,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		InlineMode:  inlineMode,
		BinaryPath:  binaryPath,
	}

	tc.Console, err = StartServer(tc, DefaultServerConfig())
	if err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to start console: %w", err)
	}

	return tc, nil
}

// Reset empties every table between scenarios
func (tc *TestContext) Reset() error {
	return tc.DB.Exec(`TRUNCATE rights_access, role_menus, users, menus, roles, audit_logs, email_logs RESTART IDENTITY CASCADE`).Error
}

// waitForServer polls the server until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Console != nil {
		tc.Console.Stop()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
