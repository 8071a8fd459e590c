// Package api implements the readyscore REST API.
// It exposes generation, evaluation, scoring and improvement endpoints plus
// read access to archived runs.
package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/readyscore/readyscore/internal/archive"
	"github.com/readyscore/readyscore/internal/store"
	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/generate"
	"github.com/readyscore/readyscore/pkg/improve"
)

// DefaultMaxBodyBytes bounds request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 1 << 20

// Options configures a Handler.
type Options struct {
	// GeneratorName and GeneratorConfigured are reported by the health check.
	GeneratorName       string
	GeneratorConfigured bool
	// MaxIterations is used when an improve request omits max_iterations.
	MaxIterations int
	// MaxIterationsCap rejects improve requests asking for more rewrites.
	MaxIterationsCap int
	MaxBodyBytes     int64
	Logger           *slog.Logger
}

// Handler is the top-level API handler for the readyscore service.
type Handler struct {
	evaluator *evaluate.Evaluator
	generator generate.Generator
	loop      *improve.Loop
	archive   *archive.Service
	runs      store.Store
	opts      Options
	logger    *slog.Logger
}

// NewHandler creates a new API handler. archiver and runs may be nil, in
// which case results are not archived and run history is empty.
func NewHandler(ev *evaluate.Evaluator, gen generate.Generator, loop *improve.Loop, archiver *archive.Service, runs store.Store, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = improve.DefaultMaxIterations
	}
	if opts.MaxIterationsCap <= 0 {
		opts.MaxIterationsCap = improve.MaxIterationsCap
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if runs == nil {
		runs, _ = store.Open(context.Background(), store.BackendNone, "")
	}
	return &Handler{
		evaluator: ev,
		generator: gen,
		loop:      loop,
		archive:   archiver,
		runs:      runs,
		opts:      opts,
		logger:    logger.With("component", "api"),
	}
}

// RegisterRoutes registers the authenticated API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate", h.handleGenerate)
	mux.HandleFunc("POST /api/evaluate", h.handleEvaluate)
	mux.HandleFunc("POST /api/score", h.handleScore)
	mux.HandleFunc("POST /api/improve", h.handleImprove)

	mux.HandleFunc("GET /api/runs", h.handleListRuns)
	mux.HandleFunc("GET /api/runs/{runID}", h.handleGetRun)
	mux.HandleFunc("GET /api/runs/{runID}/artifacts/{name}", h.handleGetArtifact)
}

// Routes returns the full HTTP handler: the health check is public, every
// other /api route requires apiKey when it is set.
func (h *Handler) Routes(apiKey string) http.Handler {
	protected := http.NewServeMux()
	h.RegisterRoutes(protected)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.Handle("/api/", APIKeyAuth(apiKey)(protected))

	return RequestLogger(h.logger)(CORS(mux))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "healthy",
		"message":              "readyscore API is running",
		"generator":            h.opts.GeneratorName,
		"generator_configured": h.opts.GeneratorConfigured,
	})
}

// readJSON decodes a JSON request body, accepting gzip-compressed bodies
// and enforcing the body size limit.
func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	var body io.Reader = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return fmt.Errorf("invalid gzip body: %w", err)
		}
		defer gz.Close()
		body = io.LimitReader(gz, h.opts.MaxBodyBytes)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, evaluate.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, evaluate.ErrAnalysisUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, evaluate.ErrGenerationFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
