package endpoints

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/doodlesbykumbi/rights-console/pkg/audit"
	"github.com/doodlesbykumbi/rights-console/pkg/policy"
	"github.com/doodlesbykumbi/rights-console/pkg/server"
)

const maxDocumentSize = 1 << 20

// UnresolvedResponse lists the menu references of a rejected document
type UnresolvedResponse struct {
	Error      string   `json:"error"`
	Unresolved []string `json:"unresolved"`
}

// RegisterPoliciesEndpoints registers the rights document endpoint
func RegisterPoliciesEndpoints(s *server.Server) {
	// POST /policies?dry_run=true - Apply (or validate) a rights document
	s.Router.HandleFunc("/policies", handlePolicyLoad(s)).Methods("POST")
}

func handlePolicyLoad(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dryRun := false
		if v := r.URL.Query().Get("dry_run"); v != "" {
			var err error
			if dryRun, err = strconv.ParseBool(v); err != nil {
				respondWithError(w, http.StatusBadRequest, "invalid dry_run")
				return
			}
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		statements, err := policy.Parse(bytes.NewReader(body))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		event := audit.PolicyEvent{
			Origin: auditOrigin(r),
			Source: "api",
			DryRun: dryRun,
		}
		result, err := policy.NewLoader(s.Backend).WithDryRun(dryRun).Load(r.Context(), statements)
		if result != nil {
			event.Roles = len(result.Roles)
			event.Users = len(result.Users)
			discardSessions(s, result)
		}
		event.Success = err == nil
		if err != nil {
			event.ErrorMessage = err.Error()
		}
		audit.Log(event)

		var unresolved *policy.UnresolvedError
		switch {
		case errors.As(err, &unresolved):
			refs := make([]string, 0, len(unresolved.Refs))
			for _, ref := range unresolved.Refs {
				refs = append(refs, ref.String())
			}
			respondWithJSON(w, http.StatusUnprocessableEntity, UnresolvedResponse{Error: "unresolved menu references", Unresolved: refs})
			return
		case err != nil:
			respondWithBackendError(s, w, r, "load_policy", err)
			return
		}

		respondWithJSON(w, http.StatusOK, result)
	}
}

// discardSessions drops the open editors a document has made stale
func discardSessions(s *server.Server, result *policy.LoadResult) {
	if result.DryRun {
		return
	}
	for _, role := range result.Roles {
		s.Sessions.Roles.Discard(role.ID)
		s.Sessions.DiscardUsersOfRole(role.ID)
	}
	for _, user := range result.Users {
		s.Sessions.Users.Discard(user.ID)
	}
}
