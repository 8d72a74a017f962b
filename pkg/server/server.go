package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/config"
	"github.com/doodlesbykumbi/rights-console/pkg/server/middleware"
)

type Server struct {
	Backend  backend.Backend
	Config   *config.Config
	Logger   *logrus.Logger
	Router   *mux.Router
	Sessions *Sessions
	Metrics  *Metrics
	srv      *http.Server
	handler  http.Handler
	logw     io.Closer
}

func NewServer(b backend.Backend, cfg *config.Config, logger *logrus.Logger) *Server {
	router := mux.NewRouter()
	metrics := NewMetrics()
	sessions := NewSessions(cfg.SessionCacheSize, cfg.SessionTTL)
	metrics.observeSessions(sessions)

	s := &Server{
		Backend:  b,
		Config:   cfg,
		Logger:   logger,
		Router:   router,
		Sessions: sessions,
		Metrics:  metrics,
	}
	s.handler = s.wrap(router)
	s.srv = &http.Server{
		Handler:      s.handler,
		Addr:         cfg.Address(),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s
}

// Handler returns the router wrapped with the console middleware, request
// logging, panic recovery and tracing
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) wrap(router *mux.Router) http.Handler {
	logw := s.Logger.Writer()
	s.logw = logw

	var h http.Handler = router
	if s.Config.ReadOnly {
		h = middleware.ReadOnly(h)
	}
	h = middleware.Actor(h)
	h = middleware.CorrelationID(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.CorrelationHeader}),
		handlers.ExposedHeaders([]string{middleware.CorrelationHeader}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(s.Logger), handlers.PrintRecoveryStack(true))(h)
	h = handlers.LoggingHandler(logw, h)
	return otelhttp.NewHandler(h, "rights-console")
}

func (s *Server) Addr() string {
	return s.srv.Addr
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// StartWithListener serves on an existing listener
func (s *Server) StartWithListener(l net.Listener) error {
	return s.srv.Serve(l)
}

// Shutdown stops accepting requests and drops every open session
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	s.Sessions.Purge()
	if s.logw != nil {
		_ = s.logw.Close()
	}
	return err
}
