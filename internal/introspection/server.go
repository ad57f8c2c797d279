// Package introspection is the demo host's read-only HTTP API over a
// CacheRegistry: chi.NewRouter() plus middleware.Recoverer/RequestID/RealIP
// and cors.Handler, with handlers split into their own file.
package introspection

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/reconcache/internal/registry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config configures Server.
type Config struct {
	Log      zerolog.Logger
	Registry *registry.Registry
	Port     int
	// UserStream, when non-nil, is mounted at /ws/userdata as the demo
	// loopback user-data-stream endpoint.
	UserStream http.Handler
}

// Server is the introspection HTTP API.
type Server struct {
	router *chi.Mux
	http   *http.Server
	log    zerolog.Logger
	reg    *registry.Registry
}

// New builds a Server ready to Start.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "introspection_server").Logger(),
		reg:    cfg.Registry,
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(15 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.setupRoutes()
	if cfg.UserStream != nil {
		s.router.Handle("/ws/userdata", cfg.UserStream)
	}

	port := cfg.Port
	if port <= 0 {
		port = 8080
	}
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start runs the HTTP server. It blocks until Shutdown stops it.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("starting introspection server")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
