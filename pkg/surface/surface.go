// Package surface renders evaluation and improvement results for people and
// machines: colored terminal tables, JSON, and markdown reports.
package surface

import (
	"fmt"
	"io"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/improve"
)

// Renderer produces formatted output for results.
type Renderer interface {
	// RenderEvaluation writes a single evaluation.
	RenderEvaluation(w io.Writer, ev *evaluate.Evaluation) error
	// RenderSummary writes the outcome of an improvement session.
	RenderSummary(w io.Writer, s *improve.Summary) error
}

// Output formats accepted by ForFormat.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ForFormat returns the renderer for a named output format.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "", FormatText:
		return &TerminalRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatMarkdown, "md":
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or markdown)", format)
	}
}
