// Package server exposes dungeon generation over HTTP.
//
// The server shares the recipe Runner with the CLI, so generation and
// caching behave identically in both. Two surfaces are provided: a
// JSON API for one-shot generation, and a WebSocket endpoint that
// streams stage events while a run executes.
package server

import (
	"bufio"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/dungenlab/dungen/pkg/errors"
	"github.com/dungenlab/dungen/pkg/recipe"
)

// Server handles HTTP and WebSocket generation requests.
type Server struct {
	runner *recipe.Runner
	logger *log.Logger
}

// New creates a server. A nil logger uses the package default.
func New(runner *recipe.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/generate", s.handleGenerate)
	r.Get("/ws", s.handleWS)

	return r
}

// GenerateRequest is the JSON body for POST /api/generate and the
// first WebSocket message.
type GenerateRequest struct {
	// Recipe is the TOML recipe source.
	Recipe string `json:"recipe"`

	Seed     *uint64  `json:"seed,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Flat     bool     `json:"flat,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`
}

// GenerateResponse is the JSON response for POST /api/generate.
// Artifact bytes are base64-encoded by the JSON encoder.
type GenerateResponse struct {
	RunID       string            `json:"run_id"`
	Seed        uint64            `json:"seed"`
	MapCount    int               `json:"map_count"`
	DungeonHash string            `json:"dungeon_hash"`
	Cached      bool              `json:"cached"`
	Artifacts   map[string][]byte `json:"artifacts"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	opts, err := s.options(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeGeneration, err, "run recipe"))
		return
	}

	s.writeJSON(w, http.StatusOK, GenerateResponse{
		RunID:       res.RunID,
		Seed:        res.Stats.Seed,
		MapCount:    res.Stats.MapCount,
		DungeonHash: res.DungeonHash,
		Cached:      res.CacheInfo.GenerateHit,
		Artifacts:   res.Artifacts,
	})
}

// options translates a request into runner options.
func (s *Server) options(req GenerateRequest) (recipe.Options, error) {
	if req.Recipe == "" {
		return recipe.Options{}, errors.New(errors.ErrCodeInvalidInput, "no recipe in request")
	}
	rec, err := recipe.Parse([]byte(req.Recipe))
	if err != nil {
		return recipe.Options{}, errors.Wrap(errors.ErrCodeInvalidRecipe, err, "parse recipe")
	}
	return recipe.Options{
		Recipe:   rec,
		Seed:     req.Seed,
		Formats:  req.Formats,
		Flat:     req.Flat,
		Detailed: req.Detailed,
		Refresh:  req.Refresh,
		Logger:   s.logger,
	}, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, errors.HTTPStatus(err), map[string]string{
		"code":  string(errors.CodeOf(err)),
		"error": err.Error(),
	})
}

// logRequests logs method, path, status, and duration for every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack passes through to the underlying writer so the WebSocket
// upgrade works behind the logging middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, stderrors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}
