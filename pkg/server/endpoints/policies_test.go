package endpoints

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/backend/backendtest"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
	"github.com/doodlesbykumbi/rights-console/pkg/policy"
)

const testDocument = `- !role
  id: 2
  menus:
    - path: /dashboard
      read: true
- !user
  id: 7
  overrides:
    - menu: 3
      write: true
`

func TestPolicyLoad(t *testing.T) {
	m := backendtest.NewMockBackend()
	m.On("MenuTree", mock.Anything).Return(testTree, nil)
	m.On("AssignRoleMenus", mock.Anything, uint(2), []backend.RoleMenuPermission{{MenuID: 1, CanRead: true}}).Return(nil)
	m.On("SaveUserRights", mock.Anything, uint(7), []backend.UserMenuPermission{{MenuID: 3, CanWrite: permission.Bool(true)}}).
		Return([]backend.RightsAccess{}, nil)
	s := newTestServer(t, m, nil)
	auditOutput.Reset()

	w := do(t, s, "POST", "/policies", strings.NewReader(testDocument))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decode[policy.LoadResult](t, w)
	assert.Len(t, result.Roles, 1)
	assert.Len(t, result.Users, 1)
	assert.False(t, result.DryRun)
	assert.Contains(t, auditOutput.String(), "applied rights document api (1 roles, 1 users)")
	m.AssertExpectations(t)
}

func TestPolicyLoad_DiscardsStaleSessions(t *testing.T) {
	m := backendtest.NewMockBackend()
	expectUser(m)
	m.On("MenuTree", mock.Anything).Return(testTree, nil)
	m.On("AssignRoleMenus", mock.Anything, uint(2), mock.Anything).Return(nil)
	m.On("SaveUserRights", mock.Anything, uint(7), mock.Anything).Return([]backend.RightsAccess{}, nil)
	s := newTestServer(t, m, nil)

	do(t, s, "GET", "/users/7/rights", nil)
	require.Equal(t, 1, s.Sessions.Users.Len())

	w := do(t, s, "POST", "/policies", strings.NewReader(testDocument))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, s.Sessions.Users.Len())
}

func TestPolicyLoad_DryRun(t *testing.T) {
	m := backendtest.NewMockBackend()
	m.On("MenuTree", mock.Anything).Return(testTree, nil)
	s := newTestServer(t, m, nil)

	w := do(t, s, "POST", "/policies?dry_run=true", strings.NewReader(testDocument))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[policy.LoadResult](t, w).DryRun)
	m.AssertNotCalled(t, "AssignRoleMenus", mock.Anything, mock.Anything, mock.Anything)
}

func TestPolicyLoad_Errors(t *testing.T) {
	m := backendtest.NewMockBackend()
	m.On("MenuTree", mock.Anything).Return(testTree, nil)
	s := newTestServer(t, m, nil)

	t.Run("invalid document", func(t *testing.T) {
		w := do(t, s, "POST", "/policies", strings.NewReader("- !group\n  id: 1\n"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unresolved menu", func(t *testing.T) {
		w := do(t, s, "POST", "/policies", strings.NewReader("- !user\n  id: 7\n  overrides:\n    - path: /missing\n      read: true\n"))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp := decode[UnresolvedResponse](t, w)
		assert.Equal(t, []string{`!user 7: path "/missing" does not exist`}, resp.Unresolved)
	})

	t.Run("invalid dry_run", func(t *testing.T) {
		w := do(t, s, "POST", "/policies?dry_run=maybe", strings.NewReader(testDocument))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
