package endpoints

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/server"
)

// StatusResponse represents the response from /status
type StatusResponse struct {
	Status       string         `json:"status"`
	Backend      string         `json:"backend"`
	ReadOnly     bool           `json:"read_only"`
	Sessions     SessionsStatus `json:"sessions"`
	Connectivity string         `json:"connectivity,omitempty"`
}

// SessionsStatus counts the open editor sessions
type SessionsStatus struct {
	Users int `json:"users"`
	Roles int `json:"roles"`
}

// RegisterStatusEndpoints registers the status, info and metrics endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Status page, HTML unless JSON is requested
	s.Router.HandleFunc("/", handleStatusPage()).Methods("GET")

	// GET /status - Health of the console and its backend
	s.Router.HandleFunc("/status", handleStatus(s)).Methods("GET")

	// GET /metrics - Prometheus metrics
	s.Router.Handle("/metrics", s.Metrics.Handler()).Methods("GET")
}

func handleStatusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept")
		format := r.URL.Query().Get("format")
		if format == "json" || strings.Contains(accept, "application/json") {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "running"})
			return
		}

		html := `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width">
    <link rel="stylesheet" href="/css/rights.css">
    <title>Rights Console Status</title>
  </head>
  <body>
    <main>
      <h1>Status</h1>
      <p class="status-text">Your rights console is running!</p>
      <p>Open <code>/users/{id}/rights.html</code> to review the effective permissions of a user.</p>
    </main>
  </body>
</html>
`
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	}
}

func handleStatus(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Status:   "ok",
			Backend:  s.Config.Backend,
			ReadOnly: s.Config.ReadOnly,
			Sessions: SessionsStatus{
				Users: s.Sessions.Users.Len(),
				Roles: s.Sessions.Roles.Len(),
			},
		}

		code := http.StatusOK
		if checker, ok := s.Backend.(backend.HealthChecker); ok {
			if err := checker.CheckConnectivity(r.Context()); err != nil {
				s.Metrics.BackendErrorsTotal.WithLabelValues("connectivity").Inc()
				resp.Status = "degraded"
				resp.Connectivity = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				resp.Connectivity = "ok"
			}
		}

		respondWithJSON(w, code, resp)
	}
}
