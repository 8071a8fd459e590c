package evaluate

import "errors"

// Error taxonomy shared by evaluation and improvement. Classify with errors.Is.
var (
	// ErrInvalidInput means empty or absent code was submitted.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAnalysisUnavailable means the analyzer produced no record at all.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	// ErrGenerationFailure means the code generator failed or returned no usable code.
	ErrGenerationFailure = errors.New("generation failure")
)
