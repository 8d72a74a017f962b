// Package backend defines the permission backend the editors, the console
// server and the CLI talk to.
//
// Two implementations exist: pkg/client speaks to the remote API over HTTP
// and pkg/backend/gorm reads and writes the same schema directly.
//
// # Usage
//
//	var b backend.Backend = client.New(cfg)
//	rights, err := b.UserRights(ctx, userID)
//	if err != nil {
//	    if errors.Is(err, backend.ErrNotFound) {
//	        // Handle unknown user
//	    }
//	}
//	overrides := backend.Overrides(rights)
package backend
