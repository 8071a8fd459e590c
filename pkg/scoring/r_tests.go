package scoring

import "github.com/readyscore/readyscore/pkg/metrics"

// TestsRule requires both test functions and at least one assertion.
type TestsRule struct {
	Points int
}

func (r *TestsRule) Key() Category { return CategoryTests }
func (r *TestsRule) Name() string  { return "Tests" }
func (r *TestsRule) Max() int      { return r.Points }

func (r *TestsRule) Award(n *metrics.Normalized) int {
	if n.TestCoverage.HasTests && n.TestCoverage.AssertionCount > 0 {
		return r.Points
	}
	return 0
}
