package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/readyscore/readyscore/pkg/improve"
)

type improveRequest struct {
	Code          string `json:"code"`
	Prompt        string `json:"prompt"`
	MaxIterations *int   `json:"max_iterations"`
}

type improveResponse struct {
	Success bool   `json:"success"`
	RunID   string `json:"run_id,omitempty"`
	*improve.Summary
}

func (h *Handler) handleImprove(w http.ResponseWriter, r *http.Request) {
	var req improveRequest
	if err := h.readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeError(w, http.StatusBadRequest, "code cannot be empty")
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = "Improve this code"
	}
	maxIterations := h.opts.MaxIterations
	if req.MaxIterations != nil {
		maxIterations = *req.MaxIterations
	}
	if maxIterations > h.opts.MaxIterationsCap {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("max_iterations must be at most %d", h.opts.MaxIterationsCap))
		return
	}

	summary, err := h.loop.Improve(r.Context(), code, prompt, maxIterations)
	if summary == nil {
		h.logger.Error("improvement failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	resp := improveResponse{Success: err == nil, Summary: summary}
	if h.archive != nil {
		runID, archiveErr := h.archive.ArchiveImprovement(r.Context(), summary)
		if archiveErr != nil {
			h.logger.Warn("archiving improvement failed", "run_id", runID, "error", archiveErr)
		} else {
			resp.RunID = runID
		}
	}

	if err != nil {
		h.logger.Warn("improvement ended early", "stop_reason", summary.StopReason, "error", err)
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
