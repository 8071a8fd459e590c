package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/improve"
	"github.com/readyscore/readyscore/pkg/metrics"
	"github.com/readyscore/readyscore/pkg/recommend"
	"github.com/readyscore/readyscore/pkg/scoring"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	deps Deps
}

type evaluationResult struct {
	Code            string              `json:"code,omitempty"`
	Score           scoring.ScoreResult `json:"production_score"`
	Evaluation      *metrics.Record     `json:"evaluation"`
	Recommendations []string            `json:"recommendations"`
	Warnings        []string            `json:"warnings,omitempty"`
}

func newEvaluationResult(ev *evaluate.Evaluation) evaluationResult {
	return evaluationResult{
		Score:           ev.Result(),
		Evaluation:      ev.Metrics,
		Recommendations: recommend.Texts(ev.Recommendations),
		Warnings:        ev.Warnings,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

func (h *toolHandler) handleEvaluateCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := request.GetString("code", "")
	if strings.TrimSpace(code) == "" {
		return mcp.NewToolResultError("code is required"), nil
	}

	ev, err := h.deps.Evaluator.Evaluate(ctx, code)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}
	return jsonResult(newEvaluationResult(ev)), nil
}

func (h *toolHandler) handleScoreMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("metrics", "")
	if strings.TrimSpace(raw) == "" {
		return mcp.NewToolResultError("metrics is required"), nil
	}

	rec, err := metrics.Decode(strings.NewReader(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid metrics: %v", err)), nil
	}
	return jsonResult(newEvaluationResult(evaluate.FromMetrics(rec))), nil
}

func (h *toolHandler) handleGenerateCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := strings.TrimSpace(request.GetString("prompt", ""))
	if prompt == "" {
		return mcp.NewToolResultError("prompt is required"), nil
	}

	code, err := h.deps.Generator.Generate(ctx, prompt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}
	ev, err := h.deps.Evaluator.Evaluate(ctx, code)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	result := newEvaluationResult(ev)
	result.Code = code
	return jsonResult(result), nil
}

func (h *toolHandler) handleImproveCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := request.GetString("code", "")
	if strings.TrimSpace(code) == "" {
		return mcp.NewToolResultError("code is required"), nil
	}
	prompt := strings.TrimSpace(request.GetString("prompt", ""))
	if prompt == "" {
		prompt = "Improve this code"
	}
	maxIterations := request.GetInt("max_iterations", improve.DefaultMaxIterations)
	limit := h.deps.MaxIterationsCap
	if limit <= 0 {
		limit = improve.MaxIterationsCap
	}
	if maxIterations > limit {
		return mcp.NewToolResultError(fmt.Sprintf("max_iterations must be at most %d", limit)), nil
	}

	summary, err := h.deps.Loop.Improve(ctx, code, prompt, maxIterations)
	if summary == nil {
		return mcp.NewToolResultError(fmt.Sprintf("improvement failed: %v", err)), nil
	}
	// A partial session still carries the best code found; the error is in
	// the summary's error field.
	return jsonResult(summary), nil
}
