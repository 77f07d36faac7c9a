// Package api exposes the rendering pipeline over HTTP.
//
// The API is a thin wrapper around [pipeline.Runner]: a POST with
// pipeline options runs the full pipeline on the server's filesystem
// and returns the placement report. Rendered sheets are written to
// the requested output directory exactly as the CLI would.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/figsheet/figsheet/pkg/buildinfo"
	"github.com/figsheet/figsheet/pkg/cache"
	errs "github.com/figsheet/figsheet/pkg/errors"
	"github.com/figsheet/figsheet/pkg/pipeline"
)

// Server handles HTTP rendering requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer builds a server around an existing runner.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Post("/v1/runs", s.handleRun)

	return r
}

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Error string `json:"error"`
}

// runResponse wraps a successful run.
type runResponse struct {
	Report any       `json:"report"`
	Hits   cacheInfo `json:"cache"`
}

type cacheInfo struct {
	TileHits   int `json:"tile_hits"`
	TileMisses int `json:"tile_misses"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

// handleRun decodes pipeline options from the request body, executes
// the pipeline, and returns the finalized report. Validation failures
// map to 400, everything else to 500.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	opts.Logger = s.logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeJSON(w, errs.HTTPStatus(err), errorResponse{Error: err.Error()})
		return
	}

	result, err := s.scopedRunner(opts.Manifest).Execute(r.Context(), opts)
	if err != nil {
		writeJSON(w, errs.HTTPStatus(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		Report: result.Report,
		Hits: cacheInfo{
			TileHits:   result.CacheInfo.TileHits,
			TileMisses: result.CacheInfo.TileMisses,
		},
	})
}

// scopedRunner copies the base runner with cache keys prefixed by the
// document, so documents sharing one store never collide on group IDs.
func (s *Server) scopedRunner(manifest string) *pipeline.Runner {
	r := *s.runner
	r.Keyer = cache.NewScopedKeyer(s.runner.Keyer, "doc:"+manifest+":")
	return &r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
