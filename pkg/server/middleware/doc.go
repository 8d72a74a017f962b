// Package middleware provides HTTP middleware for the console server.
//
//   - CorrelationID tags each request with an X-Correlation-ID
//   - Actor records who issued a request for audit events
//   - ReadOnly rejects mutating requests
package middleware
