// Package server hosts the console's HTTP server.
//
// The server keeps one editor session per user and per role in an
// expiring LRU cache. Sessions are created on first access, refreshed on
// every request and dropped after the configured TTL, when the cache is
// full, or when the client discards them. Requests on the same session are
// serialized.
//
// Endpoints are registered by package endpoints:
//
//	srv := server.NewServer(backend, cfg, logger)
//	endpoints.RegisterAll(srv)
//	err := srv.Start()
package server
