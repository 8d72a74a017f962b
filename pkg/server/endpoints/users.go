package endpoints

import (
	"context"
	"net/http"

	"github.com/doodlesbykumbi/rights-console/pkg/audit"
	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/editor"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
	"github.com/doodlesbykumbi/rights-console/pkg/server"
)

// UserRightsResponse is the full state of a user's override editor
type UserRightsResponse struct {
	User            *backend.User    `json:"user"`
	RoleID          uint             `json:"role_id"`
	Rows            []permission.Row `json:"rows"`
	CustomizedCount int              `json:"customized_count"`
	ReadOnly        bool             `json:"read_only"`
}

// RowResponse is returned after editing one row
type RowResponse struct {
	Row             permission.Row `json:"row"`
	CustomizedCount int            `json:"customized_count"`
}

// RegisterUserRightsEndpoints registers the user override editor endpoints
func RegisterUserRightsEndpoints(s *server.Server) {
	// GET /users - Page through users
	s.Router.HandleFunc("/users", handleListUsers(s)).Methods("GET")

	usersRouter := s.Router.PathPrefix("/users").Subrouter()

	usersRouter.HandleFunc("/{id}/rights", withUserRights(s, handleGetUserRights)).Methods("GET")
	usersRouter.HandleFunc("/{id}/rights.html", withUserRights(s, handleUserRightsHTML)).Methods("GET")

	// DELETE /users/{id}/rights - Discard the session and its unsaved edits
	usersRouter.HandleFunc("/{id}/rights", handleDiscardUserRights(s)).Methods("DELETE")

	usersRouter.HandleFunc("/{id}/rights/reset", withUserRights(s, handleResetAllOverrides)).Methods("POST")
	usersRouter.HandleFunc("/{id}/rights/save", withUserRights(s, handleSaveUserRights)).Methods("POST")
	usersRouter.HandleFunc("/{id}/rights/reload", withUserRights(s, handleReloadUserRights)).Methods("POST")
	usersRouter.HandleFunc("/{id}/rights/clear", withUserRights(s, handleClearUserRights)).Methods("POST")
	usersRouter.HandleFunc("/{id}/rights/{menu}/reset", withUserRights(s, handleResetOverride)).Methods("POST")
	usersRouter.HandleFunc("/{id}/rights/{menu}/{action}/cycle", withUserRights(s, handleCycleOverride)).Methods("POST")

	// PUT /users/{id}/role/{roleId} - Resolve the table against another role
	usersRouter.HandleFunc("/{id}/role/{roleId}", withUserRights(s, handleChangeRole)).Methods("PUT")
}

type userRightsHandler func(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.UserRights)

// withUserRights opens the user's session, loading it on first access, and
// runs the handler while holding it
func withUserRights(s *server.Server, h userRightsHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseID(r, "id")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		session, err := s.Sessions.Users.Open(r.Context(), userID, func(ctx context.Context) (*editor.UserRights, error) {
			return editor.LoadUserRights(ctx, s.Backend, userID, editorOptions(s)...)
		})
		if err != nil {
			respondWithBackendError(s, w, r, "load_user_rights", err)
			return
		}

		_ = session.Do(func(e *editor.UserRights) error {
			h(s, w, r, e)
			return nil
		})
	}
}

func userRightsResponse(e *editor.UserRights) UserRightsResponse {
	table := e.Table()
	return UserRightsResponse{
		User:            e.User(),
		RoleID:          e.RoleID(),
		Rows:            table.Rows(),
		CustomizedCount: table.CustomizedCount(),
		ReadOnly:        table.ReadOnly(),
	}
}

func handleGetUserRights(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.UserRights) {
	respondWithJSON(w, http.StatusOK, userRightsResponse(e))
}

func handleUserRightsHTML(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.UserRights) {
	page, err := renderUserRights(e)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func handleDiscardUserRights(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseID(r, "id")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Sessions.Users.Discard(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleCycleOverride(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.UserRights) {
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

	table := e.Table()
	before, ok := table.Row(menuID)
	if !ok {
		respondWithError(w, http.StatusNotFound, "menu not found")
		return
	}
	if !table.Cycle(menuID, action) {
		respondWithError(w, http.StatusForbidden, "console is read-only")
		return
	}

	row, _ := table.Row(menuID)
	s.Metrics.MutationsTotal.WithLabelValues("user", "cycle").Inc()
	audit.Log(audit.OverrideEvent{
		Origin: auditOrigin(r),
		UserID: e.User().ID,
		MenuID: menuID,
		Action: action.String(),
		Value:  overrideValue(row.Override.Get(action)),
		Before: before.Override,
		After:  row.Override,
	})
	respondWithJSON(w, http.StatusOK, RowResponse{Row: row, CustomizedCount: table.CustomizedCount()})
}

func handleResetOverride(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.UserRights) {
	menuID, err := parseID(r, "menu")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	table := e.Table()
	before, ok := table.Row(menuID)
	if !ok {
		respondWithError(w, http.StatusNotFound, "menu not found")
		return
	}
	if table.ReadOnly() {
		respondWithError(w, http.StatusForbidden, "console is read-only")
		return
	}

	if table.Reset(menuID) {
		s.Metrics.MutationsTotal.WithLabelValues("user", "reset").Inc()
		audit.Log(audit.OverrideEvent{
			Origin: auditOrigin(r),
			UserID: e.User().ID,
			MenuID: menuID,
			Before: before.Override,
		})
	}
	row, _ := table.Row(menuID)
	respondWithJSON(w, http.StatusOK, RowResponse{Row: row, CustomizedCount: table.CustomizedCount()})
}

func handleResetAllOverrides(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.UserRights) {
	table := e.Table()
	if table.ReadOnly() {
		respondWithError(w, http.StatusForbidden, "console is read-only")
		return
	}
	if table.ResetAll() {
		s.Metrics.MutationsTotal.WithLabelValues("user", "reset_all").Inc()
	}
	respondWithJSON(w, http.StatusOK, userRightsResponse(e))
}

func handleChangeRole(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.UserRights) {
	roleID, err := parseID(r, "roleId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := e.ChangeRole(r.Context(), roleID); err != nil {
		respondWithBackendError(s, w, r, "role_menus", err)
		return
	}
	respondWithJSON(w, http.StatusOK, userRightsResponse(e))
}

func handleSaveUserRights(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.UserRights) {
	if e.Table().ReadOnly() {
		respondWithError(w, http.StatusForbidden, "console is read-only")
		return
	}

	payload := e.Payload()
	_, err := e.Save(r.Context())
	s.Metrics.RecordSave(string(audit.SaveUserRights), err)
	event := audit.SaveEvent{
		Origin:  auditOrigin(r),
		Kind:    audit.SaveUserRights,
		Target:  e.User().ID,
		Count:   len(payload),
		Entries: payload,
		Success: err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)

	if err != nil {
		respondWithBackendError(s, w, r, "save_user_rights", err)
		return
	}
	respondWithJSON(w, http.StatusOK, userRightsResponse(e))
}

func handleClearUserRights(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.UserRights) {
	if e.Table().ReadOnly() {
		respondWithError(w, http.StatusForbidden, "console is read-only")
		return
	}

	err := e.Clear(r.Context())
	s.Metrics.RecordSave(string(audit.ClearUserRights), err)
	event := audit.SaveEvent{
		Origin:  auditOrigin(r),
		Kind:    audit.ClearUserRights,
		Target:  e.User().ID,
		Success: err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)

	if err != nil {
		respondWithBackendError(s, w, r, "delete_user_rights", err)
		return
	}
	respondWithJSON(w, http.StatusOK, userRightsResponse(e))
}

func handleReloadUserRights(s *server.Server, w http.ResponseWriter, r *http.Request, e *editor.UserRights) {
	if err := e.Reload(r.Context()); err != nil {
		respondWithBackendError(s, w, r, "load_user_rights", err)
		return
	}
	respondWithJSON(w, http.StatusOK, userRightsResponse(e))
}

func handleListUsers(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseListParams(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		page, err := s.Backend.ListUsers(r.Context(), params)
		if err != nil {
			respondWithBackendError(s, w, r, "list_users", err)
			return
		}
		respondWithJSON(w, http.StatusOK, page)
	}
}
