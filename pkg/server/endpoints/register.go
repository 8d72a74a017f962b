package endpoints

import (
	"github.com/doodlesbykumbi/rights-console/pkg/server"
)

// RegisterAll registers all console endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterUserRightsEndpoints(srv)
	RegisterRoleMenusEndpoints(srv)
	RegisterMenusEndpoints(srv)
	RegisterPoliciesEndpoints(srv)
	RegisterStatusEndpoints(srv)
	RegisterLogsEndpoints(srv)

	// Static files
	RegisterStaticFiles(srv)
}
