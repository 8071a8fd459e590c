// Package scoring implements the production-readiness rubric.
// It turns a metrics record into a 0-100 score, a rating and a per-category breakdown.
package scoring

// Category is the machine key of a rubric category.
type Category string

const (
	CategorySyntax          Category = "syntax"
	CategoryDocumentation   Category = "documentation"
	CategoryComplexity      Category = "complexity"
	CategorySecurity        Category = "security"
	CategoryErrorHandling   Category = "error_handling"
	CategoryTests           Category = "tests"
	CategoryMaintainability Category = "maintainability"
)

// Categories lists every category in canonical display order.
var Categories = []Category{
	CategorySyntax,
	CategoryDocumentation,
	CategoryComplexity,
	CategorySecurity,
	CategoryErrorHandling,
	CategoryTests,
	CategoryMaintainability,
}

// Rating is the readiness label derived from a total score.
type Rating string

const (
	RatingProductionReady Rating = "Production Ready"
	RatingNearlyReady     Rating = "Nearly Ready"
	RatingNeedsWork       Rating = "Needs Work"
	RatingNotReady        Rating = "Not Ready"
)

// MaxScore is the highest attainable total.
const MaxScore = 100

// ScoreResult is the complete output of scoring one metrics record.
// Immutable once computed.
type ScoreResult struct {
	TotalScore int            `json:"total_score"`
	Rating     Rating         `json:"rating"`
	Breakdown  map[string]int `json:"breakdown"` // category key -> earned points
}

// CategoryScore is one breakdown row with its ceiling, for display.
type CategoryScore struct {
	Key    Category `json:"key"`
	Name   string   `json:"name"`
	Points int      `json:"points"`
	Max    int      `json:"max"`
}

// Ordered returns the breakdown in canonical order. Categories omitted from
// the breakdown (after a syntax failure) are omitted here too.
func (r ScoreResult) Ordered() []CategoryScore {
	var rows []CategoryScore
	for _, rule := range defaultEngine.rules {
		pts, ok := r.Breakdown[string(rule.Key())]
		if !ok {
			continue
		}
		rows = append(rows, CategoryScore{
			Key:    rule.Key(),
			Name:   rule.Name(),
			Points: pts,
			Max:    rule.Max(),
		})
	}
	return rows
}

// Perfect reports whether the result is the maximum attainable score.
func (r ScoreResult) Perfect() bool {
	return r.TotalScore >= MaxScore
}

// RatingFromScore maps a total score to a rating. Boundaries are inclusive.
func RatingFromScore(score int) Rating {
	switch {
	case score >= 85:
		return RatingProductionReady
	case score >= 70:
		return RatingNearlyReady
	case score >= 50:
		return RatingNeedsWork
	default:
		return RatingNotReady
	}
}
