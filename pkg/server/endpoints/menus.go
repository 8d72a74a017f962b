package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/rights-console/pkg/server"
)

// RegisterMenusEndpoints registers the menu tree endpoint
func RegisterMenusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/menus/tree", handleMenuTree(s)).Methods("GET")
}

func handleMenuTree(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := s.Backend.MenuTree(r.Context())
		if err != nil {
			respondWithBackendError(s, w, r, "menu_tree", err)
			return
		}
		respondWithJSON(w, http.StatusOK, tree)
	}
}
