package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/rights-console/pkg/audit"
	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/backend/backendtest"
	"github.com/doodlesbykumbi/rights-console/pkg/config"
	"github.com/doodlesbykumbi/rights-console/pkg/logging"
	"github.com/doodlesbykumbi/rights-console/pkg/menu"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
	"github.com/doodlesbykumbi/rights-console/pkg/server"
)

var auditOutput bytes.Buffer

func TestMain(m *testing.M) {
	audit.DefaultLogger.SetWriter(&auditOutput)
	os.Exit(m.Run())
}

var testTree = []menu.Node{
	{ID: 1, Name: "Dashboard", Path: "/dashboard"},
	{ID: 2, Name: "Users", Path: "/users", Children: []menu.Node{
		{ID: 3, Name: "Rights", Path: "/users/rights"},
	}},
}

func testConfig() *config.Config {
	return &config.Config{
		Backend:          config.BackendAPI,
		ListenAddress:    "127.0.0.1",
		Port:             0,
		SessionTTL:       time.Minute,
		SessionCacheSize: 16,
		RequestTimeout:   time.Second,
		LogLevel:         "info",
	}
}

// newTestServer creates a server over a mocked backend with every endpoint
// registered
func newTestServer(t *testing.T, b backend.Backend, cfg *config.Config) *server.Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	s := server.NewServer(b, cfg, logging.Discard())
	RegisterAll(s)
	return s
}

// expectUser sets up the calls loading the editor of user 7 (role 2)
func expectUser(m *backendtest.MockBackend) {
	m.On("User", mock.Anything, uint(7)).Return(&backend.User{ID: 7, Username: "ann", RoleID: 2}, nil).Once()
	m.On("MenuTree", mock.Anything).Return(testTree, nil).Once()
	m.On("RoleMenus", mock.Anything, uint(2)).Return([]backend.RoleMenu{
		{RoleID: 2, MenuID: 1, CanRead: true},
		{RoleID: 2, MenuID: 3, CanRead: true, CanWrite: true},
	}, nil).Once()
	m.On("UserRights", mock.Anything, uint(7)).Return([]backend.RightsAccess{
		{UserID: 7, MenuID: 3, CanWrite: permission.Bool(false)},
	}, nil).Once()
}

// expectRole sets up the calls loading the editor of role 2
func expectRole(m *backendtest.MockBackend) {
	m.On("Role", mock.Anything, uint(2)).Return(&backend.Role{ID: 2, Name: "staff"}, nil).Once()
	m.On("MenuTree", mock.Anything).Return(testTree, nil).Once()
	m.On("RoleMenus", mock.Anything, uint(2)).Return([]backend.RoleMenu{
		{RoleID: 2, MenuID: 1, CanRead: true},
	}, nil).Once()
}

func do(t *testing.T, s *server.Server, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]interface{}](t, w)
	msg, _ := body["error"].(string)
	return msg
}

