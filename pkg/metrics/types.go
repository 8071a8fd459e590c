// Package metrics defines the analyzer output contract that every scoring,
// recommendation and improvement component reads.
// A Record is produced once per analysis call and never mutated afterwards.
package metrics

// Record is the raw metrics document produced by an external analyzer.
// Every sub-record is optional; consumers read it through Normalize.
type Record struct {
	SyntaxOK        bool             `json:"syntax_ok"`
	Functions       int              `json:"functions"`
	AvgComplexity   float64          `json:"avg_complexity"`
	HasDocstrings   bool             `json:"has_docstrings"`
	Security        *Security        `json:"security,omitempty"`
	ErrorHandling   *ErrorHandling   `json:"error_handling,omitempty"`
	TestCoverage    *TestCoverage    `json:"test_coverage,omitempty"`
	Maintainability *Maintainability `json:"maintainability,omitempty"`
	SolidPrinciples *SolidPrinciples `json:"solid_principles,omitempty"`
}

// Security summarizes static security findings.
type Security struct {
	SecurityIssues int             `json:"security_issues"`
	HighSeverity   int             `json:"high_severity"`
	Error          string          `json:"error,omitempty"` // set when the scanner itself failed
	Issues         []SecurityIssue `json:"issues,omitempty"`
}

// SecurityIssue is a single scanner finding, carried for display only.
type SecurityIssue struct {
	TestID     string `json:"test_id,omitempty"`
	Severity   string `json:"severity"`
	Confidence string `json:"confidence,omitempty"`
	Text       string `json:"text"`
	Line       int    `json:"line,omitempty"`
}

// ErrorHandling describes exception-handling and input-guarding practices.
type ErrorHandling struct {
	HasTryExcept        bool `json:"has_try_except"`
	ExceptionCount      int  `json:"exception_count"`
	BareExceptCount     int  `json:"bare_except_count"`
	HasLogging          bool `json:"has_logging"`
	HasValidation       bool `json:"has_validation"`
	HasCustomExceptions bool `json:"has_custom_exceptions,omitempty"`
}

// TestCoverage describes tests found in the snippet.
type TestCoverage struct {
	HasTests       bool     `json:"has_tests"`
	TestFunctions  int      `json:"test_functions"`
	AssertionCount int      `json:"assertion_count"`
	TestFrameworks []string `json:"test_frameworks,omitempty"` // set semantics
}

// Maintainability carries the maintainability index and Halstead figures.
type Maintainability struct {
	MaintainabilityIndex float64 `json:"maintainability_index"`
	HalsteadVolume       float64 `json:"halstead_volume"`
	LLOC                 int     `json:"lloc"`
	Rating               string  `json:"rating"`
	Error                string  `json:"error,omitempty"`
}

// SolidPrinciples summarizes class-level design findings.
type SolidPrinciples struct {
	SRPScore           float64  `json:"srp_score"` // 0-100
	ClassCount         int      `json:"class_count"`
	AvgMethodsPerClass float64  `json:"avg_methods_per_class"`
	GodClasses         []string `json:"god_classes,omitempty"`
	LongMethods        []string `json:"long_methods,omitempty"`
}

// Errors returns the sub-capability failure markers present in the record,
// keyed by sub-record name. Returns nil when every capability succeeded.
func (r *Record) Errors() map[string]string {
	if r == nil {
		return nil
	}
	var errs map[string]string
	add := func(k, v string) {
		if v == "" {
			return
		}
		if errs == nil {
			errs = make(map[string]string)
		}
		errs[k] = v
	}
	if r.Security != nil {
		add("security", r.Security.Error)
	}
	if r.Maintainability != nil {
		add("maintainability", r.Maintainability.Error)
	}
	return errs
}
