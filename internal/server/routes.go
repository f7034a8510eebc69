package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/rgbdio/replay/internal/errors"
	"github.com/rgbdio/replay/internal/health"
	"github.com/rgbdio/replay/internal/logger"
	"github.com/rgbdio/replay/internal/reader"
	"github.com/rgbdio/replay/pkg/version"
)

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(logger.RequestLoggerMiddleware(s.logger))
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.metricsMiddleware)

	healthHandler := health.NewHandler(s.healthMgr)
	s.router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	s.router.HandleFunc("/ready", healthHandler.HandleReady).Methods("GET")
	s.router.HandleFunc("/live", healthHandler.HandleLive).Methods("GET")

	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/session", s.handleSession).Methods("GET")
	api.HandleFunc("/metadata", s.handleMetadata).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/seek", s.handleSeek).Methods("POST")
}

// handleVersion handles the /version endpoint
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := s.writeJSON(w, http.StatusOK, version.GetInfo()); err != nil {
		s.logger.WithError(err).Error("Failed to encode version response")
	}
}

// sessionResponse summarizes the live session for API consumers.
type sessionResponse struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	Status    string `json:"status"`
}

// handleSession reports the identity and state of the current session.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if !s.session.IsOpened() {
		s.writeError(w, r, apperrors.NewNotOpenError())
		return
	}

	status := "playing"
	switch {
	case s.session.Faulted():
		status = "faulted"
	case s.session.IsEOF():
		status = "eof"
	}

	resp := sessionResponse{
		SessionID: s.session.SessionID(),
		Path:      s.session.Stats().Path,
		Status:    status,
	}
	if err := s.writeJSON(w, http.StatusOK, resp); err != nil {
		s.logger.WithError(err).Error("Failed to encode session response")
	}
}

// handleMetadata returns the stream metadata of the open recording.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	meta := s.session.Metadata()
	if meta == nil {
		s.writeError(w, r, apperrors.NewNotOpenError())
		return
	}

	if err := s.writeJSON(w, http.StatusOK, meta); err != nil {
		s.logger.WithError(err).Error("Failed to encode metadata response")
	}
}

// handleStats returns a playback snapshot: buffer occupancy, positions, flags.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if err := s.writeJSON(w, http.StatusOK, s.session.Stats()); err != nil {
		s.logger.WithError(err).Error("Failed to encode stats response")
	}
}

type seekRequest struct {
	TimestampUS uint64 `json:"timestamp_us"`
}

// handleSeek restarts playback at the requested timestamp.
func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, apperrors.NewValidationError("invalid seek request body"))
		return
	}

	if err := s.session.SeekTimestamp(req.TimestampUS); err != nil {
		var rangeErr *reader.ErrSeekOutOfRange
		switch {
		case errors.Is(err, reader.ErrNotOpen):
			s.writeError(w, r, apperrors.NewNotOpenError())
		case errors.As(err, &rangeErr):
			s.writeError(w, r, apperrors.NewSeekRangeError(err.Error()))
		default:
			s.writeError(w, r, err)
		}
		return
	}

	if err := s.writeJSON(w, http.StatusOK, s.session.Stats()); err != nil {
		s.logger.WithError(err).Error("Failed to encode seek response")
	}
}

// writeJSON is a helper to write JSON responses
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// writeError is a helper to write error responses
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.errorHandler.HandleError(w, r, err)
}
