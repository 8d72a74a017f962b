package endpoints

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/backend/backendtest"
)

func TestAuditLogs(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := backendtest.NewMockBackend()
	m.On("AuditLogs", mock.Anything, mock.MatchedBy(func(q backend.AuditLogQuery) bool {
		return q.Username == "ali" &&
			q.ResourceType == "rights_access" &&
			q.StartDate.Equal(start) &&
			q.EndDate.IsZero() &&
			q.Page == 2 && q.Limit == 100 &&
			q.SortBy == "timestamp" && q.SortOrder == "asc"
	})).Return(&backend.Page[backend.AuditLog]{
		Data:  []backend.AuditLog{{ID: 3, Username: "ali", Action: "UPDATE", ResourceType: "rights_access", ResourceID: "10"}},
		Total: 21, Page: 2, PageSize: 100, TotalPages: 1,
	}, nil).Once()
	s := newTestServer(t, m, nil)

	w := do(t, s, "GET", "/audit/logs?username=ali&resource_type=rights_access&start_date=2024-01-01T00:00:00Z&page=2&limit=500&sort_order=ASC", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	page := decode[backend.Page[backend.AuditLog]](t, w)
	assert.Equal(t, 21, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "10", page.Data[0].ResourceID)
	m.AssertExpectations(t)
}

func TestAuditLogs_PathFilters(t *testing.T) {
	t.Run("by user", func(t *testing.T) {
		m := backendtest.NewMockBackend()
		m.On("AuditLogs", mock.Anything, mock.MatchedBy(func(q backend.AuditLogQuery) bool {
			return q.UserID != nil && *q.UserID == 4 && q.ResourceType == "" && q.Limit == backend.DefaultAuditLogLimit
		})).Return(&backend.Page[backend.AuditLog]{}, nil).Once()
		s := newTestServer(t, m, nil)

		w := do(t, s, "GET", "/audit/logs/user/4?user_id=9", nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		m.AssertExpectations(t)
	})

	t.Run("by resource", func(t *testing.T) {
		m := backendtest.NewMockBackend()
		m.On("AuditLogs", mock.Anything, mock.MatchedBy(func(q backend.AuditLogQuery) bool {
			return q.UserID == nil && q.ResourceType == "role_menus" && q.ResourceID == "2"
		})).Return(&backend.Page[backend.AuditLog]{}, nil).Once()
		s := newTestServer(t, m, nil)

		w := do(t, s, "GET", "/audit/logs/role_menus/2?resource_type=rights_access", nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		m.AssertExpectations(t)
	})
}

func TestAuditLogs_Errors(t *testing.T) {
	for _, path := range []string{
		"/audit/logs?user_id=abc",
		"/audit/logs/user/0",
		"/audit/logs?start_date=yesterday",
		"/audit/logs?end_date=2024-01-01",
		"/audit/logs?page=two",
		"/audit/logs?limit=many",
	} {
		t.Run(path, func(t *testing.T) {
			s := newTestServer(t, backendtest.NewMockBackend(), nil)

			w := do(t, s, "GET", path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	t.Run("backend failure", func(t *testing.T) {
		m := backendtest.NewMockBackend()
		m.On("AuditLogs", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
		s := newTestServer(t, m, nil)

		w := do(t, s, "GET", "/audit/logs", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.BackendErrorsTotal.WithLabelValues("audit_logs")))
	})
}

func TestEmailLogs(t *testing.T) {
	m := backendtest.NewMockBackend()
	m.On("EmailLogs", mock.Anything, backend.EmailLogQuery{
		ListParams: backend.ListParams{Page: 1, PageSize: 10, Search: "welcome", SortBy: "sent_at", SortDesc: true},
		Status:     backend.EmailStatusFailed,
	}).Return(&backend.Page[backend.EmailLog]{
		Data:  []backend.EmailLog{{ID: 5, Subject: "Welcome", To: backend.Recipients{"ann@example.com"}, Status: backend.EmailStatusFailed}},
		Total: 1, Page: 1, PageSize: 10, TotalPages: 1,
	}, nil).Once()
	s := newTestServer(t, m, nil)

	w := do(t, s, "GET", "/email/logs?page=1&pageSize=10&search=welcome&sortBy=sent_at&sortDesc=true&status=failed", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	page := decode[backend.Page[backend.EmailLog]](t, w)
	require.Len(t, page.Data, 1)
	assert.Equal(t, backend.Recipients{"ann@example.com"}, page.Data[0].To)

	w = do(t, s, "GET", "/email/logs?sortDesc=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.AssertExpectations(t)
}

func TestEmailLog(t *testing.T) {
	m := backendtest.NewMockBackend()
	m.On("EmailLog", mock.Anything, uint(5)).Return(&backend.EmailLog{ID: 5, Subject: "Welcome"}, nil).Once()
	m.On("EmailLog", mock.Anything, uint(6)).Return(nil, backend.ErrNotFound).Once()
	s := newTestServer(t, m, nil)

	w := do(t, s, "GET", "/email/log/5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Welcome", decode[backend.EmailLog](t, w).Subject)

	w = do(t, s, "GET", "/email/log/6", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, "GET", "/email/log/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.AssertExpectations(t)
}
