package scoring

// Weights holds the point values and thresholds of the rubric.
type Weights struct {
	// Syntax gate
	SyntaxPoints int

	// Documentation
	DocumentationPoints int

	// Complexity
	ComplexityPoints        int
	ComplexityGoodThreshold float64 // average at or below earns full points
	ComplexityFairThreshold float64 // average at or below earns ComplexityFairPoints
	ComplexityFairPoints    int

	// Security
	SecurityPoints          int
	SecurityPenaltyPerIssue int

	// Error handling sub-awards
	TryExceptPoints    int
	NoBareExceptPoints int
	LoggingPoints      int
	ValidationPoints   int

	// Tests
	TestsPoints int

	// Maintainability tiers (strictly greater than)
	MaintainabilityTiers []MaintainabilityTier
}

// MaintainabilityTier awards Points when the index exceeds Above.
type MaintainabilityTier struct {
	Above  float64
	Points int
}

// Defaults returns the standard rubric weights.
func Defaults() Weights {
	return Weights{
		SyntaxPoints: 20,

		DocumentationPoints: 15,

		ComplexityPoints:        15,
		ComplexityGoodThreshold: 5,
		ComplexityFairThreshold: 10,
		ComplexityFairPoints:    10,

		SecurityPoints:          20,
		SecurityPenaltyPerIssue: 5,

		TryExceptPoints:    4,
		NoBareExceptPoints: 2,
		LoggingPoints:      2,
		ValidationPoints:   2,

		TestsPoints: 10,

		MaintainabilityTiers: []MaintainabilityTier{
			{Above: 85, Points: 10},
			{Above: 65, Points: 7},
			{Above: 40, Points: 4},
		},
	}
}
