// Package recommend derives an ordered improvement checklist from a metrics record.
//
// Each rule fires independently; the output order is fixed and never depends
// on priority. Priority is attached to every Recommendation when it is
// generated and always agrees with Classify applied to its text.
package recommend

import (
	"fmt"

	"github.com/readyscore/readyscore/pkg/metrics"
)

// Recommendation is one actionable item.
type Recommendation struct {
	Rule     string   `json:"rule"`
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// Rule keys, in checklist order.
const (
	RuleDocstrings      = "docstrings"
	RuleComplexity      = "complexity"
	RuleSecurity        = "security"
	RuleErrorHandling   = "error_handling"
	RuleTests           = "tests"
	RuleMaintainability = "maintainability"
	RuleValidation      = "validation"
	RuleBareExcept      = "bare_except"
	RuleLogging         = "logging"
)

// maintainabilityAbsent is the index assumed when the analyzer produced no
// maintainability data. Scoring assumes 0 in the same situation; here absence
// must not trigger the maintainability item.
const maintainabilityAbsent = 100.0

type rule struct {
	key  string
	fire func(n *metrics.Normalized) (string, bool)
}

var checklist = []rule{
	{RuleDocstrings, func(n *metrics.Normalized) (string, bool) {
		return "Add comprehensive docstrings to all functions and classes with parameter types and return values",
			!n.HasDocstrings
	}},
	{RuleComplexity, func(n *metrics.Normalized) (string, bool) {
		return fmt.Sprintf("Refactor complex functions (average complexity %.1f > 10) to improve readability and testability", n.AvgComplexity),
			n.AvgComplexity > 10
	}},
	{RuleSecurity, func(n *metrics.Normalized) (string, bool) {
		return fmt.Sprintf("Fix %d high-severity security vulnerabilities immediately (SQL injection, hardcoded secrets, command injection)", n.Security.HighSeverity),
			n.Security.HighSeverity > 0
	}},
	{RuleErrorHandling, func(n *metrics.Normalized) (string, bool) {
		return "Add proper error handling with try-except blocks for all I/O operations and external calls",
			!n.ErrorHandling.HasTryExcept
	}},
	{RuleTests, func(n *metrics.Normalized) (string, bool) {
		return "Implement unit tests with assertions covering normal cases, edge cases and failure paths",
			!n.TestCoverage.HasTests
	}},
	{RuleMaintainability, func(n *metrics.Normalized) (string, bool) {
		mi := maintainabilityAbsent
		if n.Maintainability.Present {
			mi = n.Maintainability.MaintainabilityIndex
		}
		return fmt.Sprintf("Improve maintainability (index %.1f < 65): shorten long functions, reduce nesting and remove duplication", mi),
			mi < 65
	}},
	{RuleValidation, func(n *metrics.Normalized) (string, bool) {
		return "Add input validation with type checking and range validation for all public functions",
			!n.ErrorHandling.HasValidation
	}},
	{RuleBareExcept, func(n *metrics.Normalized) (string, bool) {
		return fmt.Sprintf("Replace %d bare 'except:' clause(s) with specific exception types (ValueError, IOError, etc.)", n.ErrorHandling.BareExceptCount),
			n.ErrorHandling.BareExceptCount > 0
	}},
	{RuleLogging, func(n *metrics.Normalized) (string, bool) {
		return "Implement structured logging for errors, warnings and key operations",
			!n.ErrorHandling.HasLogging
	}},
}

// Prioritized returns every recommendation that applies to r, in checklist order.
func Prioritized(r *metrics.Record) []Recommendation {
	n := metrics.Normalize(r)
	var recs []Recommendation
	for _, rl := range checklist {
		text, ok := rl.fire(&n)
		if !ok {
			continue
		}
		recs = append(recs, Recommendation{
			Rule:     rl.key,
			Text:     text,
			Priority: Classify(text),
		})
	}
	return recs
}

// Recommend returns the recommendation texts for r, in checklist order.
// The result is empty when nothing applies.
func Recommend(r *metrics.Record) []string {
	return Texts(Prioritized(r))
}

// Texts extracts the text of each recommendation, preserving order.
func Texts(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Text)
	}
	return out
}
