// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jeranaias/raspdbot/internal/chat"
	"github.com/jeranaias/raspdbot/internal/session"
	"github.com/jeranaias/raspdbot/internal/storage"
)

// ============================================================================
// TYPES
// ============================================================================

// Version is reported by /health.
var Version = "dev"

// MessageRequest is the body of POST /v1/sessions/{id}/messages.
type MessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse is the reply to a message.
type MessageResponse struct {
	SessionID string  `json:"session_id"`
	Text      string  `json:"text"`
	Kind      string  `json:"kind"`
	Score     float64 `json:"score,omitempty"`
}

// SessionResponse describes one conversation with its history.
type SessionResponse struct {
	session.Info
	History []storage.Message `json:"history"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Conversations int    `json:"conversations"`
	UptimeSecs    int64  `json:"uptime_secs"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ============================================================================
// SERVER
// ============================================================================

// Options configure a Server. Zero values select defaults.
type Options struct {
	// Addr is the listen address (default 127.0.0.1:8080).
	Addr string

	// RateLimit is requests per second per client (0 = unlimited).
	RateLimit float64
	RateBurst int

	// MaxBodyBytes caps request bodies (default 64 KiB).
	MaxBodyBytes int64

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration

	Logger *slog.Logger
}

// Server serves conversations from a session.Manager.
type Server struct {
	manager *session.Manager
	opts    Options
	limiter *RateLimiter
	router  chi.Router
	started time.Time
}

// New builds a Server and its routes.
func New(manager *session.Manager, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:8080"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 10
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		manager: manager,
		opts:    opts,
		limiter: NewRateLimiter(opts.RateLimit, opts.RateBurst),
		started: time.Now(),
	}
	s.setupRoutes()
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.opts.Addr
}

// Handler returns the routed handler with its middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(RecoveryMiddleware(s.opts.Logger))
	r.Use(LoggingMiddleware(s.opts.Logger))
	r.Use(RateLimitMiddleware(s.limiter, s.opts.Logger))

	r.Get("/health", s.handleHealth)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/messages", s.handleMessage)
			r.Post("/reset", s.handleReset)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router = r
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       Version,
		Conversations: s.manager.Len(),
		UptimeSecs:    int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	info, err := s.manager.Create()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.manager.List()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	info, err := s.manager.Get(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	history, err := s.manager.History(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Info: info, History: history})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.manager.Reset(id); err != nil {
		s.fail(w, r, err)
		return
	}
	info, err := s.manager.Get(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req MessageRequest
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		}
		return
	}

	reply, err := s.manager.Ask(r.Context(), id, req.Message)
	resp := MessageResponse{
		SessionID: id,
		Text:      reply.Text,
		Kind:      string(reply.Kind),
		Score:     reply.Score,
	}
	if err != nil {
		if reply.Kind == chat.KindError {
			s.opts.Logger.Error("COMPLETION_FAILED", "session", id, "error", err)
			writeJSON(w, http.StatusBadGateway, resp)
			return
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// fail maps manager errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.opts.Logger.Error("REQUEST_FAILED",
			"path", r.URL.Path,
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, session.ErrLimit):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Run serves until ctx is done, then shuts down gracefully. It also
// sweeps idle conversations and rate limiter clients while running.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.manager.Run(runCtx)
	go s.pruneLimiter(runCtx)

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("SERVER_START", "addr", s.opts.Addr, "version", Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info("SERVER_SHUTDOWN")
	shutdownCtx, stop := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Prune()
		}
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Message: message, Code: status}})
}
