package scoring

import "github.com/readyscore/readyscore/pkg/metrics"

// SyntaxRule gates the whole rubric on the snippet parsing.
type SyntaxRule struct {
	Points int
}

func (r *SyntaxRule) Key() Category { return CategorySyntax }
func (r *SyntaxRule) Name() string  { return "Syntax" }
func (r *SyntaxRule) Max() int      { return r.Points }

func (r *SyntaxRule) Passes(n *metrics.Normalized) bool { return n.SyntaxOK }

func (r *SyntaxRule) Award(n *metrics.Normalized) int {
	if n.SyntaxOK {
		return r.Points
	}
	return 0
}
