package integration

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/doodlesbykumbi/rights-console/pkg/audit"
	gormbackend "github.com/doodlesbykumbi/rights-console/pkg/backend/gorm"
	"github.com/doodlesbykumbi/rights-console/pkg/config"
	"github.com/doodlesbykumbi/rights-console/pkg/db"
	"github.com/doodlesbykumbi/rights-console/pkg/logging"
	"github.com/doodlesbykumbi/rights-console/pkg/server"
	"github.com/doodlesbykumbi/rights-console/pkg/server/endpoints"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

// ServerConfig holds configuration for a test console instance
type ServerConfig struct {
	ReadOnly bool
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{}
}

// ServerInstance represents a running rights console
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	Port          int
	Config        ServerConfig
	cancel        context.CancelFunc
	listener      net.Listener
	serverProcess *exec.Cmd // For binary mode
}

// StartServer creates and starts a console over the test database.
// This supports both inline and binary modes based on how the test suite was started.
func StartServer(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	if tc.InlineMode {
		return startInlineServerInstance(tc.DatabaseURL, cfg)
	}
	return startBinaryServerInstance(tc.BinaryPath, tc.DatabaseURL, cfg)
}

// startInlineServerInstance starts an in-process server
func startInlineServerInstance(dbURL string, cfg ServerConfig) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))

	database, err := db.Connect(db.Config{URL: dbURL})
	if err != nil {
		return nil, err
	}
	rawDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	audit.DefaultStore = audit.NewStoreWithDB(rawDB)

	s := server.NewServer(gormbackend.New(database), &config.Config{
		Backend:          config.BackendDatabase,
		DatabaseURL:      dbURL,
		ListenAddress:    "127.0.0.1",
		Port:             port,
		SessionTTL:       time.Minute,
		SessionCacheSize: 64,
		RequestTimeout:   10 * time.Second,
		LogLevel:         "error",
		ReadOnly:         cfg.ReadOnly,
	}, logging.Discard())
	endpoints.RegisterAll(s)

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on port %d: %w", port, err)
	}

	_, cancel := context.WithCancel(context.Background())

	instance := &ServerInstance{
		Server:    s,
		ServerURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:      port,
		Config:    cfg,
		cancel:    cancel,
		listener:  listener,
	}

	go func() {
		_ = s.StartWithListener(listener)
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

// startBinaryServerInstance starts a server using the rightsctl binary
func startBinaryServerInstance(binaryPath, dbURL string, cfg ServerConfig) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))

	ctx, cancel := context.WithCancel(context.Background())

	args := []string{"server", "--no-migrate", "-b", "127.0.0.1", "-p", strconv.Itoa(port)}
	if cfg.ReadOnly {
		args = append(args, "--read-only")
	}
	cmd := exec.CommandContext(ctx, binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"RIGHTS_BACKEND=database",
		"DATABASE_URL="+dbURL,
		"AUDIT_DATABASE_URL="+dbURL,
		"RIGHTS_LOG_LEVEL=error",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:          port,
		Config:        cfg,
		cancel:        cancel,
		serverProcess: cmd,
	}

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.cancel != nil {
		si.cancel()
	}
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = si.Server.Shutdown(ctx)
	}
	if si.listener != nil {
		_ = si.listener.Close()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}
