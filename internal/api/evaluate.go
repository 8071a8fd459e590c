package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/metrics"
	"github.com/readyscore/readyscore/pkg/recommend"
	"github.com/readyscore/readyscore/pkg/scoring"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type evaluateRequest struct {
	Code string `json:"code"`
}

type scoreRequest struct {
	Metrics *metrics.Record `json:"metrics"`
}

// evaluationResponse is shared by the generate, evaluate and score endpoints.
type evaluationResponse struct {
	Success               bool                       `json:"success"`
	Code                  string                     `json:"code,omitempty"`
	Evaluation            *metrics.Record            `json:"evaluation"`
	ProductionScore       scoring.ScoreResult        `json:"production_score"`
	Recommendations       []string                   `json:"recommendations"`
	RecommendationDetails []recommend.Recommendation `json:"recommendation_details"`
	Warnings              []string                   `json:"warnings,omitempty"`
	RunID                 string                     `json:"run_id,omitempty"`
}

func newEvaluationResponse(ev *evaluate.Evaluation) evaluationResponse {
	recs := ev.Recommendations
	if recs == nil {
		recs = []recommend.Recommendation{}
	}
	return evaluationResponse{
		Success:               true,
		Evaluation:            ev.Metrics,
		ProductionScore:       ev.Result(),
		Recommendations:       recommend.Texts(recs),
		RecommendationDetails: recs,
		Warnings:              ev.Warnings,
	}
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := h.readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt cannot be empty")
		return
	}

	h.logger.Info("generating code", "prompt_len", len(prompt))
	code, err := h.generator.Generate(r.Context(), prompt)
	if err != nil {
		err = fmt.Errorf("%w: %v", evaluate.ErrGenerationFailure, err)
		h.logger.Error("generation failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	ev, err := h.evaluator.Evaluate(r.Context(), code)
	if err != nil {
		h.logger.Error("evaluating generated code failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	resp := newEvaluationResponse(ev)
	resp.Code = code
	resp.RunID = h.archiveEvaluation(r, code, ev)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := h.readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeError(w, http.StatusBadRequest, "code cannot be empty")
		return
	}

	ev, err := h.evaluator.Evaluate(r.Context(), code)
	if err != nil {
		h.logger.Error("evaluation failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	resp := newEvaluationResponse(ev)
	resp.RunID = h.archiveEvaluation(r, code, ev)
	writeJSON(w, http.StatusOK, resp)
}

// handleScore scores a metrics record computed elsewhere; no analyzer runs.
func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := h.readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Metrics == nil {
		writeError(w, http.StatusBadRequest, "metrics is required")
		return
	}

	writeJSON(w, http.StatusOK, newEvaluationResponse(evaluate.FromMetrics(req.Metrics)))
}

// archiveEvaluation archives the result when archiving is enabled. Failures
// are logged and do not fail the request.
func (h *Handler) archiveEvaluation(r *http.Request, code string, ev *evaluate.Evaluation) string {
	if h.archive == nil {
		return ""
	}
	runID, err := h.archive.ArchiveEvaluation(r.Context(), code, ev)
	if err != nil {
		h.logger.Warn("archiving evaluation failed", "run_id", runID, "error", err)
		return ""
	}
	return runID
}
