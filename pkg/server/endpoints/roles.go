package endpoints

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/rights-console/pkg/audit"
	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/editor"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
	"github.com/doodlesbykumbi/rights-console/pkg/server"
	"github.com/doodlesbykumbi/rights-console/pkg/server/middleware"
)

// RoleMenusResponse is the full state of a role's menu editor
type RoleMenusResponse struct {
	Role          *backend.Role             `json:"role"`
	Rows          []permission.SelectionRow `json:"rows"`
	SelectedCount int                       `json:"selected_count"`
	ReadOnly      bool                      `json:"read_only"`
	// Warning is set when the role was saved but could not be refetched
	Warning string `json:"warning,omitempty"`
}

// SelectionRowResponse is returned after editing one row
type SelectionRowResponse struct {
	Row           permission.SelectionRow `json:"row"`
	SelectedCount int                     `json:"selected_count"`
}

// RegisterRoleMenusEndpoints registers the role menu editor endpoints
func RegisterRoleMenusEndpoints(s *server.Server) {
	// GET /roles/active - List the roles a user can be given
	s.Router.HandleFunc("/roles/active", handleActiveRoles(s)).Methods("GET")

	rolesRouter := s.Router.PathPrefix("/roles").Subrouter()

	rolesRouter.HandleFunc("/{id}/menus", withRoleMenus(s, handleGetRoleMenus)).Methods("GET")
	rolesRouter.HandleFunc("/{id}/menus", handleDiscardRoleMenus(s)).Methods("DELETE")
	rolesRouter.HandleFunc("/{id}/menus/select-all", withRoleMenus(s, handleSelectAll)).Methods("POST")
	rolesRouter.HandleFunc("/{id}/menus/deselect-all", withRoleMenus(s, handleDeselectAll)).Methods("POST")
	rolesRouter.HandleFunc("/{id}/menus/save", withRoleMenus(s, handleSaveRoleMenus)).Methods("POST")
	rolesRouter.HandleFunc("/{id}/menus/{menu}/select", withRoleMenus(s, handleToggleSelected)).Methods("POST")
	rolesRouter.HandleFunc("/{id}/menus/{menu}/{action}/toggle", withRoleMenus(s, handleToggleAction)).Methods("POST")
}

type roleMenusHandler func(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.RoleMenus)

func withRoleMenus(s *server.Server, h roleMenusHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roleID, err := parseID(r, "id")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		session, err := s.Sessions.Roles.Open(r.Context(), roleID, func(ctx context.Context) (*editor.RoleMenus, error) {
			return editor.LoadRoleMenus(ctx, s.Backend, roleID, editorOptions(s)...)
		})
		if err != nil {
			respondWithBackendError(s, w, r, "load_role_menus", err)
			return
		}

		_ = session.Do(func(e *editor.RoleMenus) error {
			h(s, w, r, e)
			return nil
		})
	}
}

func roleMenusResponse(e *editor.RoleMenus) RoleMenusResponse {
	selection := e.Selection()
	return RoleMenusResponse{
		Role:          e.Role(),
		Rows:          selection.Rows(),
		SelectedCount: selection.SelectedCount(),
		ReadOnly:      selection.ReadOnly(),
	}
}

func handleGetRoleMenus(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.RoleMenus) {
	respondWithJSON(w, http.StatusOK, roleMenusResponse(e))
}

func handleDiscardRoleMenus(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roleID, err := parseID(r, "id")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Sessions.Roles.Discard(roleID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleToggleSelected(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.RoleMenus) {
	menuID, err := parseID(r, "menu")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	selection := e.Selection()
	if _, ok := selection.Row(menuID); !ok {
		respondWithError(w, http.StatusNotFound, "menu not found")
		return
	}
	if !selection.ToggleSelected(menuID) {
		respondWithError(w, http.StatusForbidden, "console is read-only")
		return
	}

	s.Metrics.MutationsTotal.WithLabelValues("role", "select").Inc()
	row, _ := selection.Row(menuID)
	respondWithJSON(w, http.StatusOK, SelectionRowResponse{Row: row, SelectedCount: selection.SelectedCount()})
}

func handleToggleAction(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.RoleMenus) {
	menuID, err := parseID(r, "menu")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	action, err := parseAction(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	selection := e.Selection()
	row, ok := selection.Row(menuID)
	switch {
	case !ok:
		respondWithError(w, http.StatusNotFound, "menu not found")
		return
	case selection.ReadOnly():
		respondWithError(w, http.StatusForbidden, "console is read-only")
		return
	case !row.Selected:
		respondWithError(w, http.StatusConflict, "menu is not selected")
		return
	}

	selection.Toggle(menuID, action)
	s.Metrics.MutationsTotal.WithLabelValues("role", "toggle").Inc()
	row, _ = selection.Row(menuID)
	respondWithJSON(w, http.StatusOK, SelectionRowResponse{Row: row, SelectedCount: selection.SelectedCount()})
}

func handleSelectAll(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.RoleMenus) {
	if !e.Selection().SelectAll() {
		respondWithError(w, http.StatusForbidden, "console is read-only")
		return
	}
	s.Metrics.MutationsTotal.WithLabelValues("role", "select_all").Inc()
	respondWithJSON(w, http.StatusOK, roleMenusResponse(e))
}

func handleDeselectAll(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.RoleMenus) {
	if !e.Selection().DeselectAll() {
		respondWithError(w, http.StatusForbidden, "console is read-only")
		return
	}
	s.Metrics.MutationsTotal.WithLabelValues("role", "deselect_all").Inc()
	respondWithJSON(w, http.StatusOK, roleMenusResponse(e))
}

func handleSaveRoleMenus(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.RoleMenus) {
	if e.Selection().ReadOnly() {
		respondWithError(w, http.StatusForbidden, "console is read-only")
		return
	}

	payload := e.Payload()
	err := e.Save(r.Context())
	s.Metrics.RecordSave(string(audit.SaveRoleMenus), err)
	event := audit.SaveEvent{
		Origin:  auditOrigin(r),
		Kind:    audit.SaveRoleMenus,
		Target:  e.Role().ID,
		Count:   len(payload),
		Entries: payload,
		Success: err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)

	if err != nil {
		respondWithBackendError(s, w, r, "assign_role_menus", err)
		return
	}

	if n := s.Sessions.RoleChanged(e.Role().ID, backend.Grants(payload)); n > 0 {
		s.Logger.WithFields(logrus.Fields{"role_id": e.Role().ID, "sessions": n}).Debug("applied new role defaults to open user sessions")
	}

	resp := roleMenusResponse(e)
	if err := e.Reload(r.Context()); err != nil {
		s.Metrics.BackendErrorsTotal.WithLabelValues("role_menus").Inc()
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"role_id":        e.Role().ID,
			"correlation_id": middleware.GetCorrelationID(r.Context()),
		}).Warn("role menus saved but not refetched")
		resp.Warning = err.Error()
	} else {
		resp = roleMenusResponse(e)
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func handleActiveRoles(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := s.Backend.ActiveRoles(r.Context())
		if err != nil {
			respondWithBackendError(s, w, r, "active_roles", err)
			return
		}
		respondWithJSON(w, http.StatusOK, roles)
	}
}
