// Package server exposes the volume lifecycle over a local HTTP API and
// serves the single-page UI that drives it.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/varenne/gocryptfs-webui/internal/api"
	"github.com/varenne/gocryptfs-webui/internal/log"
	"github.com/varenne/gocryptfs-webui/internal/picker"
)

//go:embed index.html
var indexHTML []byte

// Lifecycle runs the four gocryptfs volume operations. Outcomes describe
// domain failures; they are always delivered with HTTP 200.
type Lifecycle interface {
	Init(ctx context.Context, req api.InitRequest) *api.Outcome
	Mount(ctx context.Context, req api.MountRequest) *api.Outcome
	Info(ctx context.Context, req api.InfoRequest) *api.Outcome
	Unmount(ctx context.Context, req api.UnmountRequest) *api.Outcome
}

// Server routes HTTP requests to the lifecycle driver and the folder picker.
type Server struct {
	lifecycle Lifecycle
	picker    picker.Picker
	mux       *http.ServeMux
}

// NewServer creates a Server with all routes registered.
func NewServer(lifecycle Lifecycle, folderPicker picker.Picker) *Server {
	s := &Server{
		lifecycle: lifecycle,
		picker:    folderPicker,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", logReq(s.handleIndex))
	s.mux.HandleFunc("GET /favicon.ico", s.handleFavicon)
	s.mux.HandleFunc("POST /api/init", logReq(s.handleInit))
	s.mux.HandleFunc("POST /api/mount", logReq(s.handleMount))
	s.mux.HandleFunc("POST /api/info", logReq(s.handleInfo))
	s.mux.HandleFunc("POST /api/unmount", logReq(s.handleUnmount))
	s.mux.HandleFunc("POST /api/pick", logReq(s.handlePick))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// HTTPServer wraps the Server in an http.Server bound to addr. No timeouts
// are set: mount and init runs block until gocryptfs finishes.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{Addr: addr, Handler: s}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req api.InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &api.Outcome{Error: "invalid json"})
		return
	}
	writeJSON(w, http.StatusOK, s.lifecycle.Init(r.Context(), req))
}

func (s *Server) handleMount(w http.ResponseWriter, r *http.Request) {
	var req api.MountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &api.Outcome{Error: "invalid json"})
		return
	}
	writeJSON(w, http.StatusOK, s.lifecycle.Mount(r.Context(), req))
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var req api.InfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &api.Outcome{Error: "invalid json"})
		return
	}
	writeJSON(w, http.StatusOK, s.lifecycle.Info(r.Context(), req))
}

func (s *Server) handleUnmount(w http.ResponseWriter, r *http.Request) {
	var req api.UnmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &api.Outcome{Error: "invalid json"})
		return
	}
	writeJSON(w, http.StatusOK, s.lifecycle.Unmount(r.Context(), req))
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	path, err := s.picker.Pick(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, &api.PickOutcome{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, &api.PickOutcome{OK: true, Path: path})
}

// logReq logs the request line before dispatching. Bodies are never logged:
// they carry passwords and master keys.
func logReq(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("http request",
			"method", r.Method,
			"url", r.URL.String(),
			"addr", r.RemoteAddr)
		fn(w, r)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
