package scoring

import "github.com/readyscore/readyscore/pkg/metrics"

// MaintainabilityRule awards the first tier whose threshold the index
// strictly exceeds. Tiers must be ordered from highest threshold down.
// A missing maintainability sub-record scores as index 0.
type MaintainabilityRule struct {
	Tiers []MaintainabilityTier
}

func (r *MaintainabilityRule) Key() Category { return CategoryMaintainability }
func (r *MaintainabilityRule) Name() string  { return "Maintainability" }

func (r *MaintainabilityRule) Max() int {
	var best int
	for _, t := range r.Tiers {
		if t.Points > best {
			best = t.Points
		}
	}
	return best
}

func (r *MaintainabilityRule) Award(n *metrics.Normalized) int {
	mi := n.Maintainability.MaintainabilityIndex
	for _, t := range r.Tiers {
		if mi > t.Above {
			return t.Points
		}
	}
	return 0
}
