package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/rights-console/pkg/audit"
	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
	"github.com/doodlesbykumbi/rights-console/pkg/server"
	"github.com/doodlesbykumbi/rights-console/pkg/server/middleware"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithBackendError maps a failed backend call onto a response.
// Missing records are reported as such, anything else is a bad gateway.
func respondWithBackendError(s *server.Server, w http.ResponseWriter, r *http.Request, operation string, err error) {
	s.Metrics.BackendErrorsTotal.WithLabelValues(operation).Inc()
	s.Logger.WithError(err).WithFields(logrus.Fields{
		"operation":      operation,
		"correlation_id": middleware.GetCorrelationID(r.Context()),
	}).Warn("backend call failed")

	switch {
	case errors.Is(err, backend.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, backend.ErrUnauthorized):
		respondWithError(w, http.StatusBadGateway, fmt.Sprintf("permission backend rejected the console credentials: %v", err))
	default:
		respondWithError(w, http.StatusBadGateway, err.Error())
	}
}

// parseID reads a positive numeric path variable
func parseID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func parseAction(r *http.Request) (permission.Action, error) {
	raw := mux.Vars(r)["action"]
	action, err := permission.ActionString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid action %q", raw)
	}
	return action, nil
}

// auditOrigin describes who issued a request and from where
func auditOrigin(r *http.Request) audit.Origin {
	return audit.Origin{
		Actor:         middleware.GetActor(r.Context()),
		ActorID:       middleware.GetActorID(r.Context()),
		IPAddress:     clientIP(r),
		UserAgent:     r.UserAgent(),
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func editorOptions(s *server.Server) []permission.Option {
	if s.Config.ReadOnly {
		return []permission.Option{permission.ReadOnly()}
	}
	return nil
}

func overrideValue(v *bool) string {
	if v == nil {
		return "inherit"
	}
	return strconv.FormatBool(*v)
}

// parseListParams reads page, pageSize, search, sortBy and sortDesc from the
// query string
func parseListParams(r *http.Request) (backend.ListParams, error) {
	query := r.URL.Query()
	params := backend.ListParams{
		Search: query.Get("search"),
		SortBy: query.Get("sortBy"),
	}

	var err error
	if v := query.Get("page"); v != "" {
		if params.Page, err = strconv.Atoi(v); err != nil {
			return params, errors.New("invalid page")
		}
	}
	if v := query.Get("pageSize"); v != "" {
		if params.PageSize, err = strconv.Atoi(v); err != nil {
			return params, errors.New("invalid pageSize")
		}
	}
	if v := query.Get("sortDesc"); v != "" {
		if params.SortDesc, err = strconv.ParseBool(v); err != nil {
			return params, errors.New("invalid sortDesc")
		}
	}
	return params, nil
}
