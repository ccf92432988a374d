package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/montsmed/shelfinv/internal/session"
	"github.com/montsmed/shelfinv/internal/store"
)

// Server exposes the editing session and master table as a JSON API. The
// grid widget that renders and edits partition rows is an external
// collaborator; it talks to these endpoints and owns all presentation.
type Server struct {
	session       *session.Session
	inv           *store.Inventory
	mux           *http.ServeMux
	logger        *slog.Logger
	remoteEnabled bool
}

func NewServer(sess *session.Session, inv *store.Inventory, remoteEnabled bool, logger *slog.Logger) *Server {
	s := &Server{
		session:       sess,
		inv:           inv,
		mux:           http.NewServeMux(),
		logger:        logger,
		remoteEnabled: remoteEnabled,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/locations", s.handleListLocations)
	s.mux.HandleFunc("POST /api/locations/{key}/select", s.handleSelectLocation)
	s.mux.HandleFunc("GET /api/session", s.handleGetSession)
	s.mux.HandleFunc("PUT /api/session/rows", s.handleEditRows)
	s.mux.HandleFunc("POST /api/session/rows", s.handleAddRow)
	s.mux.HandleFunc("POST /api/session/rows/delete", s.handleDeleteRows)
	s.mux.HandleFunc("POST /api/session/commit", s.handleCommit)
	s.mux.HandleFunc("POST /api/session/discard", s.handleDiscard)
	s.mux.HandleFunc("POST /api/session/clear", s.handleClearLocation)
	s.mux.HandleFunc("POST /api/session/push", s.handlePush)
	s.mux.HandleFunc("POST /api/import", s.handleImport)
	s.mux.HandleFunc("GET /api/export", s.handleExport)
	s.mux.HandleFunc("GET /api/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}

// respondNotice reports a successful no-op (nothing selected, nothing to
// save) distinctly from both errors and real work.
func (s *Server) respondNotice(w http.ResponseWriter, msg string) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "noop", "message": msg})
}
