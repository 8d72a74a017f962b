package endpoints

import (
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/backend/backendtest"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

func TestGetUserRights(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	s := newTestServer(t, m, nil)

	w := do(t, s, "GET", "/users/7/rights", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[UserRightsResponse](t, w)
	assert.Equal(t, uint(2), resp.RoleID)
	assert.Equal(t, "ann", resp.User.Username)
	assert.Equal(t, 1, resp.CustomizedCount)
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, "Users / Rights", resp.Rows[2].MenuName)
	assert.Equal(t, permission.Grant{Read: true}, resp.Rows[2].Effective())

	t.Run("second request reuses the session", func(t *testing.T) {
		w := do(t, s, "GET", "/users/7/rights", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, s.Sessions.Users.Len())
	})

	m.AssertExpectations(t)
}

func TestGetUserRights_Errors(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		s := newTestServer(t, backendtest.NewMockBackend(), nil)

		w := do(t, s, "GET", "/users/abc/rights", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorMessage(t, w), "invalid id")
	})

	t.Run("unknown user", func(t *testing.T) {
		m := backendtest.NewMockBackend()
		m.On("User", mock.Anything, uint(8)).Return(nil, backend.ErrNotFound)
		s := newTestServer(t, m, nil)

		w := do(t, s, "GET", "/users/8/rights", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 0, s.Sessions.Users.Len())
	})

	t.Run("rejected credentials", func(t *testing.T) {
		m := backendtest.NewMockBackend()
		m.On("User", mock.Anything, uint(8)).Return(nil, backend.ErrUnauthorized)
		s := newTestServer(t, m, nil)

		w := do(t, s, "GET", "/users/8/rights", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, errorMessage(t, w), "rejected")
		assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics.BackendErrorsTotal.WithLabelValues("load_user_rights")))
	})
}

func TestCycleOverride(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	s := newTestServer(t, m, nil)
	auditOutput.Reset()

	// menu 1 grants read only: write goes inherit -> true -> false -> inherit
	expected := []*bool{permission.Bool(true), permission.Bool(false), nil}
	for i, want := range expected {
		w := do(t, s, "POST", "/users/7/rights/1/write/cycle", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[RowResponse](t, w)
		assert.Equal(t, want, resp.Row.Override.Write, "step %d", i)
	}

	resp := decode[UserRightsResponse](t, do(t, s, "GET", "/users/7/rights", nil))
	assert.Equal(t, 1, resp.CustomizedCount)

	assert.Contains(t, auditOutput.String(), "set write of user 7 on menu 1 to true")
	assert.Contains(t, auditOutput.String(), "set write of user 7 on menu 1 to inherit")
	assert.Equal(t, float64(3), testutil.ToFloat64(s.Metrics.MutationsTotal.WithLabelValues("user", "cycle")))
}

func TestCycleOverride_Errors(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	s := newTestServer(t, m, nil)

	tests := []struct {
		name         string
		path         string
		expectedCode int
	}{
		{name: "invalid menu", path: "/users/7/rights/x/read/cycle", expectedCode: http.StatusBadRequest},
		{name: "invalid action", path: "/users/7/rights/1/execute/cycle", expectedCode: http.StatusBadRequest},
		{name: "unknown menu", path: "/users/7/rights/99/read/cycle", expectedCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, "POST", tt.path, nil)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestResetOverride(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	s := newTestServer(t, m, nil)

	w := do(t, s, "POST", "/users/7/rights/3/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[RowResponse](t, w)
	assert.False(t, resp.Row.IsCustomized())
	assert.Equal(t, permission.Grant{Read: true, Write: true}, resp.Row.Effective())
	assert.Equal(t, 0, resp.CustomizedCount)
}

func TestResetAllOverrides(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	s := newTestServer(t, m, nil)

	do(t, s, "POST", "/users/7/rights/1/delete/cycle", nil)
	w := do(t, s, "POST", "/users/7/rights/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[UserRightsResponse](t, w).CustomizedCount)
}

func TestSaveUserRights(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	m.On("SaveUserRights", mock.Anything, uint(7), []backend.UserMenuPermission{
		{MenuID: 1, CanDelete: permission.Bool(true)},
		{MenuID: 3, CanWrite: permission.Bool(false)},
	}).Return([]backend.RightsAccess{
		{UserID: 7, MenuID: 1, CanDelete: permission.Bool(true)},
		{UserID: 7, MenuID: 3, CanWrite: permission.Bool(false)},
	}, nil)
	s := newTestServer(t, m, nil)
	auditOutput.Reset()

	do(t, s, "POST", "/users/7/rights/1/delete/cycle", nil)
	w := do(t, s, "POST", "/users/7/rights/save", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, 2, decode[UserRightsResponse](t, w).CustomizedCount)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics.SavesTotal.WithLabelValues("user-rights", "success")))
	assert.Contains(t, auditOutput.String(), "saved rights of user 7 (2 entries)")
	m.AssertExpectations(t)
}

func TestSaveUserRights_EmptyPayloadClears(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	m.On("SaveUserRights", mock.Anything, uint(7), []backend.UserMenuPermission{}).Return([]backend.RightsAccess{}, nil)
	s := newTestServer(t, m, nil)

	do(t, s, "POST", "/users/7/rights/3/reset", nil)
	w := do(t, s, "POST", "/users/7/rights/save", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, decode[UserRightsResponse](t, w).CustomizedCount)
	m.AssertExpectations(t)
}

func TestSaveUserRights_Failure(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	m.On("SaveUserRights", mock.Anything, uint(7), mock.Anything).Return(nil, assert.AnError)
	s := newTestServer(t, m, nil)

	w := do(t, s, "POST", "/users/7/rights/save", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics.SavesTotal.WithLabelValues("user-rights", "failure")))

	// edits survive a failed save
	resp := decode[UserRightsResponse](t, do(t, s, "GET", "/users/7/rights", nil))
	assert.Equal(t, 1, resp.CustomizedCount)
}

func TestClearUserRights(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	m.On("DeleteUserRights", mock.Anything, uint(7)).Return(nil)
	s := newTestServer(t, m, nil)

	w := do(t, s, "POST", "/users/7/rights/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[UserRightsResponse](t, w).CustomizedCount)
	m.AssertExpectations(t)
}

func TestChangeRole(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	m.On("RoleMenus", mock.Anything, uint(5)).Return([]backend.RoleMenu{
		{RoleID: 5, MenuID: 1, CanRead: true, CanWrite: true},
	}, nil)
	s := newTestServer(t, m, nil)

	w := do(t, s, "PUT", "/users/7/role/5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[UserRightsResponse](t, w)
	assert.Equal(t, uint(5), resp.RoleID)
	assert.Equal(t, permission.Grant{Read: true, Write: true}, resp.Rows[0].Effective())
	// the override on menu 3 is kept
	assert.Equal(t, 1, resp.CustomizedCount)

	w = do(t, s, "PUT", "/users/7/role/zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscardAndReloadUserRights(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	s := newTestServer(t, m, nil)

	do(t, s, "POST", "/users/7/rights/1/read/cycle", nil)

	expectUser(m)
	w := do(t, s, "POST", "/users/7/rights/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[UserRightsResponse](t, w).CustomizedCount)

	w = do(t, s, "DELETE", "/users/7/rights", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, s.Sessions.Users.Len())
	m.AssertExpectations(t)
}

func TestUserRightsHTML(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	s := newTestServer(t, m, nil)

	w := do(t, s, "GET", "/users/7/rights.html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "<h1>Rights of ann</h1>")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "<td>Users / Rights</td>")
	assert.Contains(t, body, "<strong>no</strong>")
	assert.Equal(t, 1, strings.Count(body, "<strong>"))
}

func TestListUsers(t *testing.T) {
	m := backendtest.NewMockBackend()
	m.On("ListUsers", mock.Anything, backend.ListParams{Page: 2, PageSize: 5, Search: "ann", SortBy: "name", SortDesc: true}).
		Return(&backend.Page[backend.User]{Data: []backend.User{{ID: 7, Username: "ann"}}, Total: 6, Page: 2, PageSize: 5, TotalPages: 2}, nil)
	s := newTestServer(t, m, nil)

	w := do(t, s, "GET", "/users?page=2&pageSize=5&search=ann&sortBy=name&sortDesc=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	page := decode[backend.Page[backend.User]](t, w)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, "ann", page.Data[0].Username)

	w = do(t, s, "GET", "/users?page=two", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadOnlyConsole(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	cfg := testConfig()
	cfg.ReadOnly = true
	s := newTestServer(t, m, cfg)

	w := do(t, s, "GET", "/users/7/rights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[UserRightsResponse](t, w).ReadOnly)

	w = do(t, s, "POST", "/users/7/rights/1/read/cycle", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	m.AssertNotCalled(t, "SaveUserRights", mock.Anything, mock.Anything, mock.Anything)
}
