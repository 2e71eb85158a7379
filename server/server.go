// Package server composes the HTTP server: routing, middleware, REST
// handlers, and the WebSocket live-update endpoint.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/joe5saia/family-whiteboard/config"
	"github.com/joe5saia/family-whiteboard/server/api"
	"github.com/joe5saia/family-whiteboard/server/ws"
	"github.com/joe5saia/family-whiteboard/todo"
)

// Server is the whiteboard HTTP server.
type Server struct {
	cfg     config.Config
	router  *mux.Router
	httpSrv *http.Server
	logger  *slog.Logger

	todos *todo.Service
	hub   *ws.Hub

	version string
}

// New creates a Server with the given config and logger.
func New(cfg config.Config, ver string, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		router:  mux.NewRouter(),
		logger:  logger,
		version: ver,
	}
}

// SetTodoService attaches the mutation coordinator. Call before Start.
func (s *Server) SetTodoService(svc *todo.Service) { s.todos = svc }

// SetHub attaches the fan-out hub. Call before Start.
func (s *Server) SetHub(hub *ws.Hub) { s.hub = hub }

// Start registers routes and begins listening.
func (s *Server) Start() error {
	s.registerRoutes()

	addr := s.cfg.Server.Addr
	if addr == "" {
		addr = ":3000"
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
	}
	s.logger.Info("server listening", slog.String("addr", addr))
	return s.httpSrv.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// registerRoutes sets up middleware and all HTTP routes.
func (s *Server) registerRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			s.logger.Info("handled",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.Int("status", m.Code),
				slog.Duration("duration", m.Duration),
			)
		})
	})

	h := &api.Handlers{
		Todos:   s.todos,
		Logger:  s.logger,
		Version: s.version,
	}
	h.RegisterRoutes(s.router)

	s.router.Methods(http.MethodGet).Path("/ws").HandlerFunc(s.hub.ServeWS)

	if dir := s.cfg.Server.StaticDir; dir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(dir)))
	}
}
