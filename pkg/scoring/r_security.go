package scoring

import "github.com/readyscore/readyscore/pkg/metrics"

// SecurityRule subtracts a fixed penalty per finding, floored at zero.
// A scanner failure arrives as zero issues and keeps full points.
type SecurityRule struct {
	Points          int
	PenaltyPerIssue int
}

func (r *SecurityRule) Key() Category { return CategorySecurity }
func (r *SecurityRule) Name() string  { return "Security" }
func (r *SecurityRule) Max() int      { return r.Points }

func (r *SecurityRule) Award(n *metrics.Normalized) int {
	issues := n.Security.SecurityIssues
	if issues == 0 {
		return r.Points
	}
	pts := r.Points - r.PenaltyPerIssue*issues
	if pts < 0 {
		return 0
	}
	return pts
}
