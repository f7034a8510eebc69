package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/rgbdio/replay/internal/config"
	"github.com/rgbdio/replay/internal/errors"
	"github.com/rgbdio/replay/internal/health"
	"github.com/rgbdio/replay/internal/reader"
)

// Server exposes a replay session over HTTP: metadata, playback stats and
// health. Frame delivery itself stays on the in-process consumer interface;
// the server is an observability surface.
type Server struct {
	config       *config.ServerConfig
	router       *mux.Router
	httpServer   *http.Server
	logger       *logrus.Logger
	session      *reader.Reader
	healthMgr    *health.Manager
	errorHandler *errors.ErrorHandler
}

// New creates a new server instance.
func New(cfg *config.ServerConfig, log *logrus.Logger, session *reader.Reader) *Server {
	s := &Server{
		config:       cfg,
		router:       mux.NewRouter(),
		logger:       log,
		session:      session,
		healthMgr:    health.NewManager(log),
		errorHandler: errors.NewErrorHandler(log),
	}

	s.healthMgr.Register(health.NewSessionChecker(session))
	s.setupRoutes()
	return s
}

// RegisterChecker adds an extra health checker (e.g. the registry backend).
func (s *Server) RegisterChecker(checker health.Checker) {
	s.healthMgr.Register(checker)
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.ListenAddr, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go s.healthMgr.StartPeriodicChecks(ctx, 30*time.Second)

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
