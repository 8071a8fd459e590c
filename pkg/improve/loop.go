// Package improve drives iterative code refinement: evaluate, recommend,
// rewrite, evaluate again, bounded by an iteration budget.
//
// A Loop never adopts a candidate that scores lower than the best code seen
// so far, so the final score is never below the original. Sessions share no
// state; one Loop may serve any number of concurrent Improve calls.
package improve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/recommend"
)

// DefaultMaxIterations is the iteration budget when the caller gives none.
const DefaultMaxIterations = 3

// MaxIterationsCap is the largest budget the API and MCP surfaces accept
// from a caller.
const MaxIterationsCap = 20

// Evaluator scores code. *evaluate.Evaluator satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, code string) (*evaluate.Evaluation, error)
}

// Rewriter produces a candidate replacement for code.
type Rewriter interface {
	Rewrite(ctx context.Context, code string, recommendations []string, prompt string) (string, error)
}

// Options tunes a Loop.
type Options struct {
	// IterationTimeout bounds each rewrite call. Zero means only the
	// caller's context applies.
	IterationTimeout time.Duration
	// Patience stops the session after this many consecutive iterations
	// without a score gain. Zero disables plateau detection.
	Patience int
	// OnStep, when set, is called after every history entry is recorded.
	OnStep func(Step)
	Logger *slog.Logger
}

// Loop runs improvement sessions.
type Loop struct {
	evaluator Evaluator
	rewriter  Rewriter
	opts      Options
	logger    *slog.Logger
}

// New creates a Loop.
func New(ev Evaluator, rw Rewriter, opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		evaluator: ev,
		rewriter:  rw,
		opts:      opts,
		logger:    logger.With("component", "improvement_loop"),
	}
}

// Improve refines code for up to maxIterations rewrites.
//
// On a generator or analyzer failure mid-session it returns the best result
// obtained so far together with an error wrapping
// evaluate.ErrGenerationFailure or evaluate.ErrAnalysisUnavailable. Errors
// before a baseline exists (empty code, negative budget, baseline analysis
// failure) return a nil Summary.
func (l *Loop) Improve(ctx context.Context, code, prompt string, maxIterations int) (*Summary, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: code is empty", evaluate.ErrInvalidInput)
	}
	if maxIterations < 0 {
		return nil, fmt.Errorf("%w: max_iterations must be >= 0, got %d", evaluate.ErrInvalidInput, maxIterations)
	}

	sess := &Session{
		ID:            uuid.NewString(),
		Prompt:        prompt,
		OriginalCode:  code,
		CurrentCode:   code,
		MaxIterations: maxIterations,
		startedAt:     time.Now(),
	}
	logger := l.logger.With("session_id", sess.ID)

	start := time.Now()
	baseline, err := l.evaluator.Evaluate(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("evaluating original code: %w", asAnalysisError(err))
	}
	sess.original = baseline
	sess.best = baseline
	l.record(sess, Step{
		Iteration:            0,
		Score:                baseline.Score,
		Rating:               baseline.Rating,
		Result:               baseline.Result(),
		Adopted:              true,
		BestScore:            baseline.Score,
		RecommendationsCount: len(baseline.Recommendations),
		Reason:               "baseline",
		Duration:             time.Since(start),
	})

	logger.Info("improvement session started",
		"original_score", baseline.Score,
		"max_iterations", maxIterations,
		"recommendations", len(baseline.Recommendations))

	stop, failure := l.run(ctx, sess, logger)

	summary := sess.summarize(stop, failure)
	logger.Info("improvement session finished",
		"original_score", summary.OriginalScore.TotalScore,
		"final_score", summary.FinalScore.TotalScore,
		"iterations", summary.Iterations,
		"stop_reason", stop)

	return summary, failure
}

func (l *Loop) run(ctx context.Context, sess *Session, logger *slog.Logger) (StopReason, error) {
	stale := 0
	for i := 1; i <= sess.MaxIterations; i++ {
		recs := recommend.Texts(sess.best.Recommendations)
		if len(recs) == 0 {
			logger.Info("no recommendations left", "iteration", i)
			return StopConverged, nil
		}

		start := time.Now()
		candidate, err := l.rewrite(ctx, sess.CurrentCode, recs, sess.Prompt)
		if err != nil {
			logger.Error("rewrite failed", "iteration", i, "error", err)
			return StopGenerationFailed, fmt.Errorf("iteration %d: %w: %w", i, evaluate.ErrGenerationFailure, err)
		}

		ev, err := l.evaluator.Evaluate(ctx, candidate)
		if err != nil {
			logger.Error("candidate evaluation failed", "iteration", i, "error", err)
			return StopAnalysisFailed, fmt.Errorf("iteration %d: %w", i, asAnalysisError(err))
		}
		sess.IterationsPerformed = i

		prev := sess.best.Score
		adopted := ev.Score >= prev
		if adopted {
			sess.best = ev
			sess.CurrentCode = candidate
		}

		l.record(sess, Step{
			Iteration:            i,
			Score:                ev.Score,
			Rating:               ev.Rating,
			Result:               ev.Result(),
			Adopted:              adopted,
			BestScore:            sess.best.Score,
			RecommendationsCount: len(ev.Recommendations),
			Reason:               stepReason(prev, ev.Score),
			Duration:             time.Since(start),
		})
		logger.Info("iteration finished",
			"iteration", i,
			"candidate_score", ev.Score,
			"best_score", sess.best.Score,
			"adopted", adopted)

		if adopted && ev.Result().Perfect() && ev.Metrics != nil && ev.Metrics.SyntaxOK {
			return StopMaxScore, nil
		}

		if ev.Score > prev {
			stale = 0
		} else {
			stale++
		}
		if l.opts.Patience > 0 && stale >= l.opts.Patience {
			logger.Info("score plateau reached", "iteration", i, "patience", l.opts.Patience)
			return StopPlateau, nil
		}
	}
	return StopBudgetExhausted, nil
}

func (l *Loop) rewrite(ctx context.Context, code string, recs []string, prompt string) (string, error) {
	if l.opts.IterationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.IterationTimeout)
		defer cancel()
	}

	candidate, err := l.rewriter.Rewrite(ctx, code, recs, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(candidate) == "" {
		return "", errors.New("rewriter returned empty code")
	}
	return candidate, nil
}

func (l *Loop) record(sess *Session, step Step) {
	sess.History = append(sess.History, step)
	if l.opts.OnStep != nil {
		l.opts.OnStep(step)
	}
}

func stepReason(prev, score int) string {
	switch {
	case score > prev:
		return fmt.Sprintf("improved from %d to %d", prev, score)
	case score == prev:
		return fmt.Sprintf("no change at %d", score)
	default:
		return fmt.Sprintf("regressed to %d, kept %d", score, prev)
	}
}

func asAnalysisError(err error) error {
	if errors.Is(err, evaluate.ErrAnalysisUnavailable) || errors.Is(err, evaluate.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %w", evaluate.ErrAnalysisUnavailable, err)
}
