package scoring

// DefaultRules returns the standard rubric categories with default weights,
// in canonical order.
func DefaultRules() []Rule {
	w := Defaults()
	return []Rule{
		&SyntaxRule{Points: w.SyntaxPoints},
		&DocumentationRule{Points: w.DocumentationPoints},
		&ComplexityRule{
			Points:        w.ComplexityPoints,
			GoodThreshold: w.ComplexityGoodThreshold,
			FairThreshold: w.ComplexityFairThreshold,
			FairPoints:    w.ComplexityFairPoints,
		},
		&SecurityRule{
			Points:          w.SecurityPoints,
			PenaltyPerIssue: w.SecurityPenaltyPerIssue,
		},
		&ErrorHandlingRule{
			TryExceptPoints:    w.TryExceptPoints,
			NoBareExceptPoints: w.NoBareExceptPoints,
			LoggingPoints:      w.LoggingPoints,
			ValidationPoints:   w.ValidationPoints,
		},
		&TestsRule{Points: w.TestsPoints},
		&MaintainabilityRule{Tiers: w.MaintainabilityTiers},
	}
}
