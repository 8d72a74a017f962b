package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

func respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	status := "success"
	if code >= 400 {
		status = "error"
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  status,
		"message": "ok",
		"data":    data,
	})
}

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/api/v1/", Token: token, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func signedToken(t *testing.T, exp time.Time) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := New(Config{BaseURL: "https://example.com/api/v1"})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, c.timeout)
}

func TestClient_MenuTree(t *testing.T) {
	c := newTestClient(t, "opaque-token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/menus/tree", r.URL.Path)
		assert.Equal(t, "Bearer opaque-token", r.Header.Get("Authorization"))
		respond(w, http.StatusOK, []map[string]interface{}{
			{"id": 1, "name": "Users", "path": "/users", "children": []map[string]interface{}{
				{"id": 2, "name": "Roles", "path": "/users/roles", "parent_id": 1},
			}},
		})
	})

	tree, err := c.MenuTree(t.Context())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, uint(2), tree[0].Children[0].ID)
	require.NotNil(t, tree[0].Children[0].ParentID)
}

func TestClient_UserRights(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rights-access/user/12", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"status":"success","message":"","data":[
			{"id":1,"user_id":12,"menu_id":4,"can_read":null,"can_write":false,"can_update":null,"can_delete":true}
		]}`)
	})

	rights, err := c.UserRights(t.Context(), 12)
	require.NoError(t, err)
	require.Len(t, rights, 1)
	assert.Equal(t, permission.Override{Write: permission.Bool(false), Delete: permission.Bool(true)}, rights[0].Override())
}

func TestClient_SaveUserRights_EmptySendsArray(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/rights-access/user/3/bulk", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"permissions":[]}`, string(body))
		respond(w, http.StatusOK, []interface{}{})
	})

	rights, err := c.SaveUserRights(t.Context(), 3, nil)
	require.NoError(t, err)
	assert.Empty(t, rights)
}

func TestClient_SaveUserRights_KeepsNulls(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"permissions":[{"menu_id":5,"can_read":null,"can_write":true,"can_update":null,"can_delete":null}]}`, string(body))
		respond(w, http.StatusOK, nil)
	})

	_, err := c.SaveUserRights(t.Context(), 3, []backend.UserMenuPermission{{MenuID: 5, CanWrite: permission.Bool(true)}})
	require.NoError(t, err)
}

func TestClient_AssignRoleMenus(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/role/2/menus", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"menus":[]}`, string(body))
		respond(w, http.StatusOK, nil)
	})

	require.NoError(t, c.AssignRoleMenus(t.Context(), 2, nil))
}

func TestClient_ListUsers(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("pageSize"))
		assert.Equal(t, "ann", q.Get("search"))
		assert.Equal(t, "true", q.Get("sortDesc"))
		assert.False(t, q.Has("sortBy"))
		respond(w, http.StatusOK, map[string]interface{}{
			"data":       []map[string]interface{}{{"id": 9, "username": "ann", "role": map[string]interface{}{"id": 4}}},
			"total":      26,
			"page":       2,
			"pageSize":   25,
			"totalPages": 2,
		})
	})

	page, err := c.ListUsers(t.Context(), backend.ListParams{Page: 2, PageSize: 25, Search: "ann", SortDesc: true})
	require.NoError(t, err)
	assert.Equal(t, 26, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, uint(4), page.Data[0].EffectiveRoleID())
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"not found", http.StatusNotFound, `{"status":"error","message":"user not found"}`, backend.ErrNotFound, "user not found"},
		{"unauthorized", http.StatusUnauthorized, `{"status":"error","message":"token invalid","code":"AUTH"}`, backend.ErrUnauthorized, "token invalid"},
		{"server error", http.StatusInternalServerError, `upstream exploded`, nil, "upstream exploded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.User(t.Context(), 1)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			} else {
				assert.False(t, errors.Is(err, backend.ErrNotFound))
			}
		})
	}
}

func TestClient_ExpiredToken(t *testing.T) {
	called := false
	c := newTestClient(t, signedToken(t, time.Now().Add(-time.Minute)), func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.ActiveRoles(t.Context())
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	assert.False(t, called)
}

func TestClient_ValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, exp)
	c := newTestClient(t, token, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		respond(w, http.StatusOK, []map[string]interface{}{{"id": 1, "name": "admin", "is_active": true}})
	})

	assert.True(t, c.TokenExpiry().Equal(exp))
	roles, err := c.ActiveRoles(t.Context())
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "admin", roles[0].Name)
}

func TestClient_AuditLogs(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/audit/logs", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "4", q.Get("user_id"))
		assert.Equal(t, "UPDATE", q.Get("action"))
		assert.Equal(t, "2024-03-01T00:00:00Z", q.Get("start_date"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.False(t, q.Has("end_date"))
		assert.False(t, q.Has("username"))
		respond(w, http.StatusOK, map[string]interface{}{
			"data": []map[string]interface{}{{
				"id": 3, "user_id": 4, "username": "alice", "action": "UPDATE",
				"resource_type": "rights_access", "resource_id": "10",
				"new_values": `{"menu_id":1,"can_read":true}`, "timestamp": "2024-03-02T10:00:00Z",
			}},
			"total": 1, "page": 1, "pageSize": 50, "totalPages": 1,
		})
	})

	userID := uint(4)
	page, err := c.AuditLogs(t.Context(), backend.AuditLogQuery{UserID: &userID, Action: "UPDATE", StartDate: start, Limit: 50})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "alice", page.Data[0].Username)
	assert.Equal(t, `{"menu_id":1,"can_read":true}`, page.Data[0].NewValues)
	assert.Equal(t, 50, page.PageSize)
}

func TestClient_EmailLogs(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/email/logs", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "failed", q.Get("status"))
		assert.Equal(t, "welcome", q.Get("search"))
		assert.Equal(t, "2", q.Get("page"))
		respond(w, http.StatusOK, map[string]interface{}{
			"data": []map[string]interface{}{{
				"id": 8, "from": "noreply@example.com", "to": `["ann@example.com","bob@example.com"]`,
				"subject": "Welcome", "status": "failed", "error_message": "rejected",
			}},
			"total": 1, "page": 2, "pageSize": 10, "totalPages": 1,
		})
	})

	page, err := c.EmailLogs(t.Context(), backend.EmailLogQuery{
		ListParams: backend.ListParams{Page: 2, Search: "welcome"},
		Status:     backend.EmailStatusFailed,
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, backend.Recipients{"ann@example.com", "bob@example.com"}, page.Data[0].To)
	assert.Equal(t, "rejected", page.Data[0].ErrorMessage)
}

func TestClient_EmailLog(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/email/log/8":
			respond(w, http.StatusOK, map[string]interface{}{
				"id": 8, "to": []string{"ann@example.com"}, "cc": []string{"ops@example.com"}, "status": "sent",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":"error","message":"Email log not found"}`))
		}
	})

	log, err := c.EmailLog(t.Context(), 8)
	require.NoError(t, err)
	assert.Equal(t, backend.Recipients{"ann@example.com"}, log.To)
	assert.Equal(t, backend.Recipients{"ops@example.com"}, log.Cc)

	_, err = c.EmailLog(t.Context(), 9)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}
