package scoring

import (
	"math"

	"github.com/readyscore/readyscore/pkg/metrics"
)

// ComplexityRule scores average cyclomatic complexity in three bands.
// Above FairThreshold points decay linearly, one per unit, with no upper cap
// on the complexity considered.
type ComplexityRule struct {
	Points        int
	GoodThreshold float64
	FairThreshold float64
	FairPoints    int
}

func (r *ComplexityRule) Key() Category { return CategoryComplexity }
func (r *ComplexityRule) Name() string  { return "Complexity" }
func (r *ComplexityRule) Max() int      { return r.Points }

func (r *ComplexityRule) Award(n *metrics.Normalized) int {
	avg := n.AvgComplexity
	switch {
	case avg <= r.GoodThreshold:
		return r.Points
	case avg <= r.FairThreshold:
		return r.FairPoints
	}

	decayed := float64(r.Points) - (avg - r.FairThreshold)
	if decayed <= 0 {
		return 0
	}
	return int(math.Floor(decayed))
}
