package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/server"
)

func RegisterLogsEndpoints(s *server.Server) {
	auditRouter := s.Router.PathPrefix("/audit").Subrouter()

	// GET /audit/logs - Filtered audit trail, newest first
	auditRouter.HandleFunc("/logs", handleAuditLogs(s)).Methods("GET")
	auditRouter.HandleFunc("/logs/user/{userId}", handleAuditLogs(s)).Methods("GET")
	auditRouter.HandleFunc("/logs/{resourceType}/{resourceId}", handleAuditLogs(s)).Methods("GET")

	s.Router.HandleFunc("/email/logs", handleEmailLogs(s)).Methods("GET")
	s.Router.HandleFunc("/email/log/{id}", handleEmailLog(s)).Methods("GET")
}

// parseAuditLogQuery reads the audit filters from the query string. Path
// variables take precedence over the matching query parameters.
func parseAuditLogQuery(r *http.Request) (backend.AuditLogQuery, error) {
	query := r.URL.Query()
	vars := mux.Vars(r)

	q := backend.AuditLogQuery{
		Username:      query.Get("username"),
		Action:        query.Get("action"),
		ResourceType:  query.Get("resource_type"),
		ResourceID:    query.Get("resource_id"),
		IPAddress:     query.Get("ip_address"),
		CorrelationID: query.Get("correlation_id"),
		SortBy:        query.Get("sort_by"),
		SortOrder:     query.Get("sort_order"),
	}
	if v, ok := vars["resourceType"]; ok {
		q.ResourceType = v
		q.ResourceID = vars["resourceId"]
	}

	rawUserID := query.Get("user_id")
	if v, ok := vars["userId"]; ok {
		rawUserID = v
	}
	if rawUserID != "" {
		id, err := strconv.ParseUint(rawUserID, 10, 64)
		if err != nil || id == 0 {
			return q, fmt.Errorf("invalid user_id %q", rawUserID)
		}
		userID := uint(id)
		q.UserID = &userID
	}

	var err error
	if q.StartDate, err = parseTime(query, "start_date"); err != nil {
		return q, err
	}
	if q.EndDate, err = parseTime(query, "end_date"); err != nil {
		return q, err
	}
	if v := query.Get("page"); v != "" {
		if q.Page, err = strconv.Atoi(v); err != nil {
			return q, fmt.Errorf("invalid page %q", v)
		}
	}
	if v := query.Get("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil {
			return q, fmt.Errorf("invalid limit %q", v)
		}
	}
	return q.Normalized(), nil
}

func parseTime(query url.Values, name string) (time.Time, error) {
	v := query.Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, expected RFC3339", name, v)
	}
	return t, nil
}

func handleAuditLogs(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseAuditLogQuery(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		page, err := s.Backend.AuditLogs(r.Context(), q)
		if err != nil {
			respondWithBackendError(s, w, r, "audit_logs", err)
			return
		}
		respondWithJSON(w, http.StatusOK, page)
	}
}

func handleEmailLogs(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseListParams(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		q := backend.EmailLogQuery{ListParams: params, Status: r.URL.Query().Get("status")}

		page, err := s.Backend.EmailLogs(r.Context(), q)
		if err != nil {
			respondWithBackendError(s, w, r, "email_logs", err)
			return
		}
		respondWithJSON(w, http.StatusOK, page)
	}
}

func handleEmailLog(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		l, err := s.Backend.EmailLog(r.Context(), id)
		if err != nil {
			respondWithBackendError(s, w, r, "email_log", err)
			return
		}
		respondWithJSON(w, http.StatusOK, l)
	}
}
