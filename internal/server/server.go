// Package server wires the router, middleware and handlers together and owns
// the HTTP lifecycle. The service is internal: the public-facing API,
// authentication and persistence all live with the submission-pipeline
// collaborator that calls it.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ataljudge/executor/internal/executor"
	"github.com/ataljudge/executor/internal/handler"
	"github.com/ataljudge/executor/internal/metrics"
	"github.com/ataljudge/executor/internal/middleware"
)

// Config holds server configuration.
type Config struct {
	Port int
}

// Server represents the HTTP server and its dependencies.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

// New creates a new Server around the given executor.
func New(cfg Config, logger *slog.Logger, exec executor.Executor, stats *metrics.Metrics) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(exec, stats)
	return s
}

func (s *Server) setupRoutes(exec executor.Executor, stats *metrics.Metrics) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	executeHandler := handler.NewExecuteHandler(exec, stats, s.logger)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/execute", executeHandler.HandleExecute)
		r.Post("/execute/batch", executeHandler.HandleBatch)
		r.Get("/stats", executeHandler.HandleStats)
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully,
// giving in-flight executions time to finish.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Writes happen after the child process finished, so the write
		// timeout must exceed the largest execution deadline.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", slog.Int("port", s.config.Port))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
