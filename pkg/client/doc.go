// Package client implements backend.Backend against the remote permission
// API.
//
// Every response is wrapped in an envelope:
//
//	{"status": "success", "message": "...", "data": ...}
//
// Non-2xx responses decode into *APIError, which matches backend.ErrNotFound
// and backend.ErrUnauthorized with errors.Is.
//
// Requests carry the configured bearer token. When the token is a JWT with
// an exp claim, requests fail with backend.ErrUnauthorized once it has
// expired instead of reaching the server.
package client
