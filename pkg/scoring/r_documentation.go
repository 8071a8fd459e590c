package scoring

import "github.com/readyscore/readyscore/pkg/metrics"

// DocumentationRule awards all-or-nothing points for docstrings.
type DocumentationRule struct {
	Points int
}

func (r *DocumentationRule) Key() Category { return CategoryDocumentation }
func (r *DocumentationRule) Name() string  { return "Documentation" }
func (r *DocumentationRule) Max() int      { return r.Points }

func (r *DocumentationRule) Award(n *metrics.Normalized) int {
	if n.HasDocstrings {
		return r.Points
	}
	return 0
}
