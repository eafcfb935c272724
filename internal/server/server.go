// Package server exposes the sync and query pipelines over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/siteassist/siteassist/internal/metrics"
	"github.com/siteassist/siteassist/internal/models"
	"github.com/siteassist/siteassist/internal/service"
)

// UserStore is the slice of the user database the handlers need.
// Satisfied by *db.Client.
type UserStore interface {
	CreateUser(ctx context.Context, input models.UserInput) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateFeedURL(ctx context.Context, id, feedURL string) error
	DeleteUser(ctx context.Context, id string) error
}

// Server is the HTTP API server.
type Server struct {
	users   UserStore
	sync    *service.SyncService
	query   *service.QueryService
	purge   *service.PurgeService
	tasks   *service.TaskRunner
	metrics *metrics.Collector
	logger  *slog.Logger

	http *http.Server
}

// New creates a server listening on the given port.
func New(port string, users UserStore, syncSvc *service.SyncService, querySvc *service.QueryService, purgeSvc *service.PurgeService, collector *metrics.Collector, logger *slog.Logger) *Server {
	s := &Server{
		users:   users,
		sync:    syncSvc,
		query:   querySvc,
		purge:   purgeSvc,
		tasks:   service.NewTaskRunner(),
		metrics: collector,
		logger:  logger,
	}

	s.http = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // Long for LLM responses
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Routes builds the handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/query", s.authenticated(s.handleQuery))
	mux.HandleFunc("POST /api/v1/update", s.authenticated(s.handleUpdate))
	mux.HandleFunc("DELETE /api/v1/user/{id}", s.authenticated(s.handleDelete))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)

	return LoggingMiddleware(s.logger)(mux)
}

// Run starts the server and blocks until the context is canceled, then
// shuts down gracefully and waits for background syncs to finish.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.tasks.Wait()
	s.logger.Info("server stopped")
	return nil
}
