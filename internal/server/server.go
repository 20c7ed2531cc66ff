// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects handlers, middleware, and routes,
// and owns the lifecycle of the database connection.
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config.Config and builds the zap logger, then
//
//	Server.New() creates: sqlite.DB → UserRepository ┐
//	                      auth.PasswordService       ├→ UserService → UserHandler
//	                                                  ┘
//	                      CalculatorHandler (no dependencies beyond the logger)
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sakif/accountkit/internal/auth"
	"github.com/sakif/accountkit/internal/config"
	"github.com/sakif/accountkit/internal/handler"
	"github.com/sakif/accountkit/internal/middleware"
	sqliteRepo "github.com/sakif/accountkit/internal/repository/sqlite"
	"github.com/sakif/accountkit/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Start closes it on the way out;
// callers that never call Start must call Close.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *zap.Logger
	db     *sqliteRepo.DB
}

// New opens the database and wires every layer to the router.
func New(cfg config.Config, logger *zap.Logger) (*Server, error) {
	passwords, err := auth.NewPasswordServiceWithCost(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("creating password service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	userService := service.NewUserService(db.Users(), passwords, logger)
	s.setupRoutes(userService)

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /api/users                → Create user
// GET    /api/users                → List users, newest first
// GET    /api/users/count          → Count users
// GET    /api/users/lookup?email=  → Find user by email
// GET    /api/users/{id}           → Find user by id
// PUT    /api/users/{id}           → Update email
// DELETE /api/users/{id}           → Delete user
// POST   /api/credentials/verify   → Check email + password
// GET    /api/calc/factorial?n=    → n!
// GET    /api/calc/{op}?a=&b=      → sum, subtract, multiply, divide
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns unique ID to each request (the logger reads it)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Recoverer: catches panics and returns 500 instead of crashing
// 4. Logger: logs each request with timing info
// 5. CORS: answers preflights for the configured browser origins
//
// Static segments ("count", "lookup", "factorial") win over {id}/{op} in
// chi's radix tree, so registration order does not matter here.
func (s *Server) setupRoutes(users handler.UserService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	userHandler := handler.NewUserHandler(users, s.logger)
	calcHandler := handler.NewCalculatorHandler(s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.HandleCreate)
			r.Get("/", userHandler.HandleList)
			r.Get("/count", userHandler.HandleCount)
			r.Get("/lookup", userHandler.HandleLookup)
			r.Get("/{id}", userHandler.HandleGetByID)
			r.Put("/{id}", userHandler.HandleUpdate)
			r.Delete("/{id}", userHandler.HandleDelete)
		})

		r.Post("/credentials/verify", userHandler.HandleVerifyCredentials)

		r.Get("/calc/factorial", calcHandler.HandleFactorial)
		r.Get("/calc/{op}", calcHandler.HandleBinary)
	})
}

// Handler returns the fully wired router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database connection.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			zap.Int("port", s.config.Port),
			zap.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			zap.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
