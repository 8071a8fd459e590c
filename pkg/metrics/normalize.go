package metrics

import "math"

// Normalized is a Record with every optional field filled in.
// Scoring and recommendation rules read only this form.
type Normalized struct {
	SyntaxOK      bool
	Functions     int
	AvgComplexity float64
	HasDocstrings bool

	Security        NormalizedSecurity
	ErrorHandling   NormalizedErrorHandling
	TestCoverage    NormalizedTestCoverage
	Maintainability NormalizedMaintainability
	SolidPrinciples NormalizedSolidPrinciples
}

type NormalizedSecurity struct {
	Present        bool
	SecurityIssues int
	HighSeverity   int
	Error          string
}

type NormalizedErrorHandling struct {
	Present         bool
	HasTryExcept    bool
	ExceptionCount  int
	BareExceptCount int
	HasLogging      bool
	HasValidation   bool
}

type NormalizedTestCoverage struct {
	Present        bool
	HasTests       bool
	TestFunctions  int
	AssertionCount int
	TestFrameworks []string
}

// NormalizedMaintainability keeps Present so callers can tell a missing
// index apart from a genuine zero.
type NormalizedMaintainability struct {
	Present              bool
	MaintainabilityIndex float64
	HalsteadVolume       float64
	LLOC                 int
	Rating               string
	Error                string
}

type NormalizedSolidPrinciples struct {
	Present            bool
	SRPScore           float64
	ClassCount         int
	AvgMethodsPerClass float64
	GodClasses         []string
}

// Normalize substitutes zero values for anything missing or out of range.
// It never fails and never modifies r.
func Normalize(r *Record) Normalized {
	var n Normalized
	if r == nil {
		return n
	}

	n.SyntaxOK = r.SyntaxOK
	n.Functions = nonNegInt(r.Functions)
	n.AvgComplexity = nonNegFloat(r.AvgComplexity)
	n.HasDocstrings = r.HasDocstrings

	if s := r.Security; s != nil {
		n.Security = NormalizedSecurity{
			Present:        true,
			SecurityIssues: nonNegInt(s.SecurityIssues),
			HighSeverity:   nonNegInt(s.HighSeverity),
			Error:          s.Error,
		}
	}

	if eh := r.ErrorHandling; eh != nil {
		n.ErrorHandling = NormalizedErrorHandling{
			Present:         true,
			HasTryExcept:    eh.HasTryExcept,
			ExceptionCount:  nonNegInt(eh.ExceptionCount),
			BareExceptCount: nonNegInt(eh.BareExceptCount),
			HasLogging:      eh.HasLogging,
			HasValidation:   eh.HasValidation,
		}
	}

	if tc := r.TestCoverage; tc != nil {
		n.TestCoverage = NormalizedTestCoverage{
			Present:        true,
			HasTests:       tc.HasTests,
			TestFunctions:  nonNegInt(tc.TestFunctions),
			AssertionCount: nonNegInt(tc.AssertionCount),
			TestFrameworks: dedupe(tc.TestFrameworks),
		}
	}

	if m := r.Maintainability; m != nil {
		n.Maintainability = NormalizedMaintainability{
			Present:              true,
			MaintainabilityIndex: nonNegFloat(m.MaintainabilityIndex),
			HalsteadVolume:       nonNegFloat(m.HalsteadVolume),
			LLOC:                 nonNegInt(m.LLOC),
			Rating:               m.Rating,
			Error:                m.Error,
		}
	}

	if sp := r.SolidPrinciples; sp != nil {
		n.SolidPrinciples = NormalizedSolidPrinciples{
			Present:            true,
			SRPScore:           math.Min(nonNegFloat(sp.SRPScore), 100),
			ClassCount:         nonNegInt(sp.ClassCount),
			AvgMethodsPerClass: nonNegFloat(sp.AvgMethodsPerClass),
			GodClasses:         append([]string(nil), sp.GodClasses...),
		}
	}

	return n
}

func nonNegInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func nonNegFloat(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}

func dedupe(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ss))
	var out []string
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
