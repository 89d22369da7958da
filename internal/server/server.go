// Package server exposes the scan pipeline over HTTP for browser clients
// and automation. All handlers answer JSON and allow cross-origin calls so
// a static frontend can talk to the API directly.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/marthaea/link-guardian-safecheck/internal/history"
	"github.com/marthaea/link-guardian-safecheck/internal/scan"
)

// Server is the HTTP API surface around a scan.Service. The history store
// is optional; without one the /api/history endpoint reports an empty list.
type Server struct {
	svc    *scan.Service
	store  *history.Store
	router chi.Router
	logger zerolog.Logger
}

// New wires the routes and returns a ready handler. When a store is given
// the server registers a scan observer that persists every completed scan.
func New(svc *scan.Service, store *history.Store, logger zerolog.Logger) *Server {
	s := &Server{
		svc:    svc,
		store:  store,
		router: chi.NewRouter(),
		logger: logger,
	}
	if store != nil {
		svc.AddObserver(s.recordEvent)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/api/check", s.optionsHandler("POST"))
	r.Options("/api/check/bulk", s.optionsHandler("POST"))
	r.Options("/api/history", s.optionsHandler("GET"))

	r.Post("/api/check", s.handleCheck)
	r.Post("/api/check/bulk", s.handleCheckBulk)
	r.Get("/api/history", s.handleHistory)
	r.Get("/healthz", s.handleHealth)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http request")
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if body.Input == "" {
		writeError(w, http.StatusBadRequest, "URL or email address is required")
		return
	}

	v := s.svc.Scan(r.Context(), body.Input)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCheckBulk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Inputs []string `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if len(body.Inputs) == 0 {
		writeError(w, http.StatusBadRequest, "At least one URL or email address is required")
		return
	}
	const maxBulk = 100
	if len(body.Inputs) > maxBulk {
		writeError(w, http.StatusBadRequest, "Too many inputs in one request (max 100)")
		return
	}

	results := s.svc.ScanAll(r.Context(), body.Inputs)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		v, err := strconv.Atoi(ls)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"scans": []history.Entry{}})
		return
	}

	var (
		entries []history.Entry
		err     error
	)
	if domain := r.URL.Query().Get("domain"); domain != "" {
		entries, err = s.store.ByDomain(r.Context(), domain, limit)
	} else {
		entries, err = s.store.Recent(r.Context(), limit)
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("reading scan history")
		writeError(w, http.StatusInternalServerError, "failed to read scan history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scans": entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) recordEvent(ev scan.Event) {
	if ev.Cached {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Record(ctx, ev.ScanID, ev.Verdict); err != nil {
		s.logger.Warn().Err(err).Str("scan_id", ev.ScanID).Msg("recording scan history")
	}
}
