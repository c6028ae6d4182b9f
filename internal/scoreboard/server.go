// Package scoreboard serves the shared leaderboard over HTTP.
package scoreboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"akaun-master/internal/scoring"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
)

// Store is the scoring side the service is backed by.
type Store interface {
	Submit(ctx context.Context, r scoring.Record) error
	History(ctx context.Context) ([]scoring.Record, error)
}

type Server struct {
	router chi.Router
	server *http.Server
	store  Store
	logger *slog.Logger
}

// NewServer wires the routes and middleware for addr.
func NewServer(addr string, store Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		router: chi.NewRouter(),
		store:  store,
		logger: logger.With("component", "scoreboard"),
	}

	s.router.Use(chimid.RequestID)
	s.router.Use(chimid.Recoverer)
	s.router.Use(AccessLog(s.logger))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/scores", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleSubmit)
	})

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Addr() string {
	return s.server.Addr
}

// Run blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Run() error {
	s.logger.Info("listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
