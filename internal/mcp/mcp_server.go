// Package mcp exposes evaluation, scoring, generation and improvement as
// Model Context Protocol tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/generate"
	"github.com/readyscore/readyscore/pkg/improve"
)

// Deps are the services behind the MCP tools.
type Deps struct {
	Evaluator *evaluate.Evaluator
	Generator generate.Generator
	Loop      *improve.Loop
	Version   string

	// MaxIterationsCap bounds improve_code's max_iterations. Zero means
	// improve.MaxIterationsCap.
	MaxIterationsCap int
}

// NewMCPServer initializes and configures the readyscore MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(deps Deps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"readyscore",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{deps: deps}

	s.AddTool(mcp.NewTool("evaluate_code",
		mcp.WithDescription("Analyze a code snippet and return its production-readiness score, rating, breakdown and recommendations."),
		mcp.WithString("code", mcp.Description("Source code to evaluate."), mcp.Required()),
	), h.handleEvaluateCode)

	s.AddTool(mcp.NewTool("score_metrics",
		mcp.WithDescription("Score a precomputed metrics record (JSON) without running the analyzer."),
		mcp.WithString("metrics", mcp.Description("Metrics record as a JSON object string."), mcp.Required()),
	), h.handleScoreMetrics)

	s.AddTool(mcp.NewTool("generate_code",
		mcp.WithDescription("Generate code for a task description and evaluate the result."),
		mcp.WithString("prompt", mcp.Description("What the code should do."), mcp.Required()),
	), h.handleGenerateCode)

	s.AddTool(mcp.NewTool("improve_code",
		mcp.WithDescription("Iteratively rewrite code to address its recommendations, keeping the best-scoring version."),
		mcp.WithString("code", mcp.Description("Source code to improve."), mcp.Required()),
		mcp.WithString("prompt", mcp.Description("Original task description. Defaults to 'Improve this code'.")),
		mcp.WithNumber("max_iterations", mcp.Description("Maximum number of rewrites (default 3).")),
	), h.handleImproveCode)

	return s
}

// StartMCPServer starts the readyscore MCP server on stdio.
func StartMCPServer(_ context.Context, deps Deps) error {
	return server.ServeStdio(NewMCPServer(deps))
}
