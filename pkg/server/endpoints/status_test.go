package endpoints

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/rights-console/pkg/backend/backendtest"
)

type checkedBackend struct {
	*backendtest.MockBackend
	err error
}

func (b checkedBackend) CheckConnectivity(ctx context.Context) error {
	return b.err
}

func TestHandleStatusPage(t *testing.T) {
	t.Run("returns HTML status page", func(t *testing.T) {
		handler := handleStatusPage()

		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Your rights console is running!")
	})

	t.Run("returns JSON when Accept header is application/json", func(t *testing.T) {
		handler := handleStatusPage()

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})
}

func TestStatus(t *testing.T) {
	t.Run("backend without health check", func(t *testing.T) {
		s := newTestServer(t, backendtest.NewMockBackend(), nil)

		w := do(t, s, "GET", "/status", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[StatusResponse](t, w)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "api", resp.Backend)
		assert.Empty(t, resp.Connectivity)
	})

	t.Run("healthy backend", func(t *testing.T) {
		s := newTestServer(t, checkedBackend{MockBackend: backendtest.NewMockBackend()}, nil)

		w := do(t, s, "GET", "/status", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode[StatusResponse](t, w).Connectivity)
	})

	t.Run("unreachable backend", func(t *testing.T) {
		s := newTestServer(t, checkedBackend{MockBackend: backendtest.NewMockBackend(), err: assert.AnError}, nil)

		w := do(t, s, "GET", "/status", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "degraded", decode[StatusResponse](t, w).Status)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, backendtest.NewMockBackend(), nil)

	w := do(t, s, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rights_console_open_sessions")
}

func TestCorrelationHeader(t *testing.T) {
	s := newTestServer(t, backendtest.NewMockBackend(), nil)

	req := httptest.NewRequest("GET", "/status", nil)
	req.Header.Set("X-Correlation-ID", "req-1")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get("X-Correlation-ID"))
}

func TestStaticFiles(t *testing.T) {
	s := newTestServer(t, backendtest.NewMockBackend(), nil)

	w := do(t, s, "GET", "/css/rights.css", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "border-collapse")
}
