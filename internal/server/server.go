// Package server wires the board backend: routes, middleware and the
// HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/garageboard/internal/server/handlers"
	"github.com/iudanet/garageboard/internal/server/live"
	"github.com/iudanet/garageboard/internal/server/middleware"
	"github.com/iudanet/garageboard/internal/server/storage"
)

// Storage is everything the backend needs from persistence
type Storage interface {
	storage.Storage
	handlers.Pinger
}

// Options содержит параметры сервера
type Options struct {
	Addr       string
	Version    string
	JWT        handlers.JWTConfig
	RateLimit  int
	RateWindow time.Duration
}

// Server представляет HTTP сервер доски
type Server struct {
	logger  *slog.Logger
	hub     *live.Hub
	limiter *middleware.RateLimiter
	http    *http.Server
}

// New создает сервер со всеми маршрутами
func New(opts Options, store Storage, logger *slog.Logger) *Server {
	hub := live.NewHub(logger.With("component", "live"))
	limiter := middleware.NewRateLimiter(opts.RateLimit, opts.RateWindow, logger)

	s := &Server{
		logger:  logger,
		hub:     hub,
		limiter: limiter,
	}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(opts, store),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) routes(opts Options, store Storage) http.Handler {
	health := handlers.NewHealthHandler(s.logger, store, opts.Version)
	board := handlers.NewBoardHandler(s.logger, store, s.hub)
	records := handlers.NewRecordHandler(s.logger, store, s.hub)

	// Маршруты, требующие токен оператора
	protected := http.NewServeMux()
	protected.HandleFunc("GET /appointments/board", board.Board)
	protected.HandleFunc("GET /appointments/stats", board.Stats)
	protected.HandleFunc("PATCH /appointments/{id}/move", board.Move)
	protected.Handle("GET /appointments/events", s.hub)

	protected.HandleFunc("GET /admin/customers", records.SearchCustomers)
	protected.HandleFunc("GET /admin/customers/{id}", records.GetCustomer)
	protected.HandleFunc("GET /admin/customers/{id}/profile", records.CustomerProfile)
	protected.HandleFunc("PATCH /admin/customers/{id}", records.PatchCustomer)
	protected.HandleFunc("GET /admin/vehicles/{id}", records.GetVehicle)
	protected.HandleFunc("GET /admin/vehicles/{id}/profile", records.VehicleProfile)
	protected.HandleFunc("PATCH /admin/vehicles/{id}", records.PatchVehicle)

	auth := middleware.AuthMiddleware(s.logger, opts.JWT)
	limit := middleware.RateLimitMiddleware(s.limiter, middleware.ByOperator)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", health.Health)
	root.Handle("/", auth(limit(protected)))

	var h http.Handler = root
	h = middleware.LoggingWithSkip(s.logger, []string{"/health"})(h)
	h = middleware.RecoveryMiddleware(s.logger)(h)
	h = middleware.RequestIDMiddleware(h)
	return h
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// websocket соединения не учитываются Shutdown, закрываем их отдельно
	s.hub.Close()
	err := s.http.Shutdown(shutdownCtx)
	s.close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// close releases background resources
func (s *Server) close() {
	s.hub.Close()
	s.limiter.Stop()
}

// Close releases background resources of a server that was never run
func (s *Server) Close() {
	s.close()
}
