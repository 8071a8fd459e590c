package improve

import (
	"time"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/metrics"
	"github.com/readyscore/readyscore/pkg/recommend"
	"github.com/readyscore/readyscore/pkg/scoring"
)

// StopReason says why an improvement session ended.
type StopReason string

const (
	StopConverged        StopReason = "converged"         // nothing left to recommend
	StopMaxScore         StopReason = "max_score"         // adopted code scored 100
	StopBudgetExhausted  StopReason = "budget_exhausted"  // every requested iteration ran
	StopPlateau          StopReason = "plateau"           // Patience iterations without a gain
	StopGenerationFailed StopReason = "generation_failed" // rewriter failed or returned nothing
	StopAnalysisFailed   StopReason = "analysis_failed"   // a candidate could not be analyzed
)

// Failed reports whether the session was cut short by an error.
func (r StopReason) Failed() bool {
	return r == StopGenerationFailed || r == StopAnalysisFailed
}

// Step is one entry of a session's score history. Iteration 0 is the baseline.
type Step struct {
	Iteration            int                 `json:"iteration"`
	Score                int                 `json:"score"`
	Rating               scoring.Rating      `json:"rating"`
	Result               scoring.ScoreResult `json:"result"`
	Adopted              bool                `json:"adopted"`
	BestScore            int                 `json:"best_score"`
	RecommendationsCount int                 `json:"recommendations_count"`
	Reason               string              `json:"reason"`
	Duration             time.Duration       `json:"duration_ns"`
}

// Session is the state of one improvement request. It is owned by a single
// call to Improve and discarded when that call returns.
type Session struct {
	ID                  string
	Prompt              string
	OriginalCode        string
	CurrentCode         string
	History             []Step
	IterationsPerformed int
	MaxIterations       int

	original  *evaluate.Evaluation
	best      *evaluate.Evaluation
	startedAt time.Time
}

// Summary is the caller-facing result of an improvement session.
type Summary struct {
	SessionID              string              `json:"session_id"`
	Prompt                 string              `json:"prompt"`
	OriginalCode           string              `json:"original_code"`
	ImprovedCode           string              `json:"improved_code"`
	OriginalScore          scoring.ScoreResult `json:"original_score"`
	FinalScore             scoring.ScoreResult `json:"final_score"`
	OriginalEvaluation     *metrics.Record     `json:"original_evaluation"`
	FinalEvaluation        *metrics.Record     `json:"final_evaluation"`
	Iterations             int                 `json:"iterations"`
	RequestedIterations    int                 `json:"requested_iterations"`
	History                []Step              `json:"improvement_history"`
	RecommendationsApplied []string            `json:"recommendations_applied"`
	Recommendations        []string            `json:"recommendations"`
	StopReason             StopReason          `json:"stop_reason"`
	Error                  string              `json:"error,omitempty"`
	StartedAt              time.Time           `json:"started_at"`
	FinishedAt             time.Time           `json:"finished_at"`
}

// Improvement is the score gain from original to final.
func (s *Summary) Improvement() int {
	return s.FinalScore.TotalScore - s.OriginalScore.TotalScore
}

// FinalRecommendations returns the residual recommendations with priorities.
func (s *Summary) FinalRecommendations() []recommend.Recommendation {
	return recommend.Prioritized(s.FinalEvaluation)
}

func (s *Session) summarize(stop StopReason, failure error) *Summary {
	sum := &Summary{
		SessionID:              s.ID,
		Prompt:                 s.Prompt,
		OriginalCode:           s.OriginalCode,
		ImprovedCode:           s.CurrentCode,
		OriginalScore:          s.original.Result(),
		FinalScore:             s.best.Result(),
		OriginalEvaluation:     s.original.Metrics,
		FinalEvaluation:        s.best.Metrics,
		Iterations:             s.IterationsPerformed,
		RequestedIterations:    s.MaxIterations,
		History:                s.History,
		RecommendationsApplied: recommend.Texts(s.original.Recommendations),
		Recommendations:        recommend.Recommend(s.best.Metrics),
		StopReason:             stop,
		StartedAt:              s.startedAt,
		FinishedAt:             time.Now(),
	}
	if failure != nil {
		sum.Error = failure.Error()
	}
	return sum
}
