// Package httpapi exposes a Bot over HTTP: an ingestion endpoint for
// transports that deliver updates via webhook, and an admin surface for
// inspecting sessions and scene trees.
//
// Replies are not part of the HTTP response; they stream through the
// bot's configured sink, the same as for every other transport.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	grammy "github.com/gabelluardo/grammY"
	"github.com/gabelluardo/grammY/internal/logging"
	"github.com/gabelluardo/grammY/internal/runtime"
	"github.com/gabelluardo/grammY/pkg/domain"
)

// Server handles the HTTP surface for one Bot.
type Server struct {
	bot     *grammy.Bot
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetricsHandler mounts a metrics endpoint at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewHandler builds the router for the given bot.
func NewHandler(bot *grammy.Bot, opts ...Option) http.Handler {
	s := &Server{
		bot:    bot,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Get("/healthz", s.health)
	r.Post("/updates", s.handleUpdate)
	r.Get("/sessions", s.listSessions)
	r.Get("/sessions/{key}", s.getSession)
	r.Delete("/sessions/{key}", s.deleteSession)
	r.Post("/sessions/{key}/scenes/{scene}", s.enterScene)
	r.Get("/scenes", s.listScenes)
	r.Get("/scenes/{id}", s.describeScene)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

// requestID tags every response with a fresh id for log correlation.
// Inbound X-Request-Id headers are kept, so ids survive proxies.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		s.logger.Debug("http request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpdate ingests one update and dispatches it synchronously. The
// transport behind this endpoint must serialize deliveries per key.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var u domain.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed update body")
		return
	}

	err := s.bot.HandleUpdate(r.Context(), &u)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case isInvalidUpdate(err):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsDesync(err):
		// The stale trace is already discarded; the conversation starts
		// over on the next update.
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("update dispatch failed", "key", u.Key, "err", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	keys, err := s.bot.Sessions().List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"keys": keys, "count": len(keys)})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	sess, err := s.bot.Sessions().Load(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := s.bot.Sessions().Delete(r.Context(), key); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) enterScene(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	id := chi.URLParam(r, "scene")

	err := s.bot.Enter(r.Context(), key, id)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "entered", "scene": id})
	case errors.Is(err, domain.ErrUnknownScene):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyActive):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("scene enter failed", "key", key, "scene", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) listScenes(w http.ResponseWriter, r *http.Request) {
	ids := s.bot.Scenes().IDs()
	s.writeJSON(w, http.StatusOK, map[string]any{"scenes": ids})
}

func (s *Server) describeScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := s.bot.Describe(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(out)); err != nil {
		s.logger.Error("describe write failed", "scene", id, "err", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func isInvalidUpdate(err error) bool {
	var ie *runtime.InvalidUpdateError
	return errors.As(err, &ie)
}
