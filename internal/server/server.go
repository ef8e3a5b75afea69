// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer. It decides:
//   - Which URL patterns map to which handler functions
//   - What middleware runs on which routes
//   - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go: config.Load() → server.New(cfg, logger)
//	server.New: sqldb.Open → TodoService → TodoHandler / HealthHandler
//
// This is the "composition root": every dependency is built here and passed
// down explicitly. No package reaches for a global database handle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/todo-service/internal/config"
	"github.com/sakif/todo-service/internal/handler"
	"github.com/sakif/todo-service/internal/middleware"
	"github.com/sakif/todo-service/internal/repository/sqldb"
	"github.com/sakif/todo-service/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database pool and closes it after the listener has
// drained, so no in-flight request loses its connection mid-query.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqldb.DB
}

// New opens the database, runs migrations and builds the router.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.Database.Driver == sqldb.DriverSQLite && cfg.Database.URL != ":memory:" {
		dir := filepath.Dir(cfg.Database.URL)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := sqldb.Open(context.Background(), cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes()

	return s, nil
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database pool.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /                → welcome message
//	GET    /api/health      → database connectivity
//	GET    /api/todos       → list todos
//	POST   /api/todos       → create todo
//	GET    /api/todos/{id}  → get todo
//	PUT    /api/todos/{id}  → partial update
//	DELETE /api/todos/{id}  → delete todo
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: every later log line can carry the ID
//  2. RealIP: extracts the client IP from proxy headers
//  3. Logger: logs each request with timing info
//  4. Recoverer: turns panics into 500s instead of crashing the process
//
// CORS is applied to /api only.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	todoService := service.NewTodoService(s.db, s.logger)
	todoHandler := handler.NewTodoHandler(todoService, s.logger)
	healthHandler := handler.NewHealthHandler(todoService)

	s.router.Get("/", handler.Home)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(s.config.CORS.AllowedOrigins))
		r.NotFound(handler.NotFound)
		r.MethodNotAllowed(handler.MethodNotAllowed)

		r.Get("/health", healthHandler.HandleHealth)
		r.Mount("/todos", todoHandler.Routes())
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("env", s.config.Env),
			slog.String("driver", s.db.Driver()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
