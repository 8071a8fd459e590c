// Package evaluate runs analysis, scoring and recommendation for one snippet.
package evaluate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/readyscore/readyscore/pkg/analyze"
	"github.com/readyscore/readyscore/pkg/metrics"
	"github.com/readyscore/readyscore/pkg/recommend"
	"github.com/readyscore/readyscore/pkg/scoring"
)

// Evaluation is the result of evaluating one snippet.
type Evaluation struct {
	Score           int                        `json:"score"`
	Rating          scoring.Rating             `json:"rating"`
	Breakdown       map[string]int             `json:"breakdown"`
	Metrics         *metrics.Record            `json:"metrics"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Warnings        []string                   `json:"warnings,omitempty"` // absorbed sub-capability failures
}

// Result reassembles the score result.
func (e *Evaluation) Result() scoring.ScoreResult {
	return scoring.ScoreResult{TotalScore: e.Score, Rating: e.Rating, Breakdown: e.Breakdown}
}

// Evaluator ties an analyzer to the scoring rubric.
// It holds no per-call state and is safe for concurrent use when its
// analyzer is.
type Evaluator struct {
	analyzer analyze.Analyzer
}

// New creates an evaluator backed by the given analyzer.
func New(a analyze.Analyzer) *Evaluator {
	return &Evaluator{analyzer: a}
}

// Evaluate analyzes code and scores it.
func (e *Evaluator) Evaluate(ctx context.Context, code string) (*Evaluation, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: code is empty", ErrInvalidInput)
	}

	rec, err := e.analyzer.Analyze(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisUnavailable, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: analyzer returned no metrics", ErrAnalysisUnavailable)
	}

	return FromMetrics(rec), nil
}

// FromMetrics scores a record that was produced elsewhere.
func FromMetrics(rec *metrics.Record) *Evaluation {
	result := scoring.Compute(rec)
	return &Evaluation{
		Score:           result.TotalScore,
		Rating:          result.Rating,
		Breakdown:       result.Breakdown,
		Metrics:         rec,
		Recommendations: recommend.Prioritized(rec),
		Warnings:        warnings(rec),
	}
}

func warnings(rec *metrics.Record) []string {
	errs := rec.Errors()
	if len(errs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s analysis unavailable: %s", k, errs[k]))
	}
	return out
}
