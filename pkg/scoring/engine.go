package scoring

import "github.com/readyscore/readyscore/pkg/metrics"

// Rule is the interface that all rubric categories implement.
type Rule interface {
	// Key returns the machine-readable category identifier.
	Key() Category
	// Name returns the human-readable category name.
	Name() string
	// Max returns the most points the category can award.
	Max() int
	// Award computes the points earned for a normalized record.
	Award(n *metrics.Normalized) int
}

// Gate is implemented by rules whose failure voids every other category.
type Gate interface {
	Passes(n *metrics.Normalized) bool
}

// Engine runs all configured rules against a record and produces a ScoreResult.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine creates a scoring engine with the given rules.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

var defaultEngine = NewEngine(DefaultRules()...)

// Compute scores a raw record with the default rubric.
// It is total: missing or malformed fields score as their zero value.
func Compute(r *metrics.Record) ScoreResult {
	return defaultEngine.Score(metrics.Normalize(r))
}

// Score evaluates all rules and produces a complete ScoreResult.
func (e *Engine) Score(n metrics.Normalized) ScoreResult {
	result := ScoreResult{Breakdown: make(map[string]int, len(e.rules))}

	for _, rule := range e.rules {
		if g, ok := rule.(Gate); ok && !g.Passes(&n) {
			return ScoreResult{
				TotalScore: 0,
				Rating:     RatingNotReady,
				Breakdown:  map[string]int{string(rule.Key()): 0},
			}
		}

		pts := clampInt(rule.Award(&n), 0, rule.Max())
		result.Breakdown[string(rule.Key())] = pts
		result.TotalScore += pts
	}

	result.TotalScore = clampInt(result.TotalScore, 0, MaxScore)
	result.Rating = RatingFromScore(result.TotalScore)

	return result
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
