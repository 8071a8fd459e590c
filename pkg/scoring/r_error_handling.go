package scoring

import "github.com/readyscore/readyscore/pkg/metrics"

// ErrorHandlingRule sums independent sub-awards.
// The no-bare-except award only counts when exception handling exists at
// all, so code without any try/except earns nothing for avoiding bare ones.
// This keeps the reference record (no try/except, complexity 3, MI 90)
// at error_handling 0 and a total of 65, "Needs Work".
type ErrorHandlingRule struct {
	TryExceptPoints    int
	NoBareExceptPoints int
	LoggingPoints      int
	ValidationPoints   int
}

func (r *ErrorHandlingRule) Key() Category { return CategoryErrorHandling }
func (r *ErrorHandlingRule) Name() string  { return "Error handling" }

func (r *ErrorHandlingRule) Max() int {
	return r.TryExceptPoints + r.NoBareExceptPoints + r.LoggingPoints + r.ValidationPoints
}

func (r *ErrorHandlingRule) Award(n *metrics.Normalized) int {
	eh := n.ErrorHandling
	var pts int
	if eh.HasTryExcept {
		pts += r.TryExceptPoints
		if eh.BareExceptCount == 0 {
			pts += r.NoBareExceptPoints
		}
	}
	if eh.HasLogging {
		pts += r.LoggingPoints
	}
	if eh.HasValidation {
		pts += r.ValidationPoints
	}
	return pts
}
