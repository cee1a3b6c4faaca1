// Package web exposes the HTTP surface: the camera's polling protocol, the
// operator console API and the attendance queries.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/edalquez/facegate/internal/command"
	"github.com/edalquez/facegate/internal/config"
	"github.com/edalquez/facegate/internal/store"
	"github.com/edalquez/facegate/internal/web/middleware"
	"github.com/edalquez/facegate/internal/workflow"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server

	commands   *command.Store
	workflow   *workflow.Service
	attendance store.AttendanceStore
	students   store.StudentStore
	uploadsDir string
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, host string, port int, commands *command.Store,
	wf *workflow.Service, attendance store.AttendanceStore, students store.StudentStore,
	uploadsDir string) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:     cfg,
		router:     r,
		commands:   commands,
		workflow:   wf,
		attendance: attendance,
		students:   students,
		uploadsDir: uploadsDir,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(2 * time.Minute))
	r.Use(middleware.CORS())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // recognition waits on the embedding service
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
