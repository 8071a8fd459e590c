// Package archive persists evaluation and improvement results: artifacts go
// to blob storage and a summary row goes to the run history store.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/readyscore/readyscore/internal/blob"
	"github.com/readyscore/readyscore/internal/store"
	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/improve"
	"github.com/readyscore/readyscore/pkg/surface"
)

// Artifact names written per run.
const (
	ArtifactOriginal   = "original.txt"
	ArtifactImproved   = "improved.txt"
	ArtifactReport     = "report.md"
	ArtifactSummary    = "summary.json"
	ArtifactEvaluation = "evaluation.json"
)

// Service archives results.
type Service struct {
	runs   store.Store
	blobs  blob.Storage
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new archive Service. A nil logger uses slog.Default().
func NewService(runs store.Store, blobs blob.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		runs:   runs,
		blobs:  blobs,
		logger: logger.With("component", "archive"),
		now:    time.Now,
	}
}

// ArchiveEvaluation stores the evaluated code, a markdown report and the
// evaluation JSON, then records the run. It returns the run ID.
func (s *Service) ArchiveEvaluation(ctx context.Context, code string, ev *evaluate.Evaluation) (string, error) {
	runID := uuid.NewString()

	var report, payload bytes.Buffer
	if err := (&surface.MarkdownRenderer{}).RenderEvaluation(&report, ev); err != nil {
		return runID, fmt.Errorf("render report: %w", err)
	}
	if err := (&surface.JSONRenderer{}).RenderEvaluation(&payload, ev); err != nil {
		return runID, fmt.Errorf("render evaluation: %w", err)
	}

	refs, err := s.putAll(ctx, runID, map[string][]byte{
		ArtifactOriginal:   []byte(code),
		ArtifactReport:     report.Bytes(),
		ArtifactEvaluation: payload.Bytes(),
	})
	if err != nil {
		return runID, err
	}

	err = s.runs.RecordEvaluation(ctx, store.EvaluationRun{
		ID:                  runID,
		CreatedAt:           s.now(),
		Score:               ev.Score,
		Rating:              string(ev.Rating),
		Breakdown:           ev.Breakdown,
		RecommendationCount: len(ev.Recommendations),
		ReportRef:           refs[ArtifactReport],
	})
	if err != nil {
		return runID, fmt.Errorf("archive evaluation: %w", err)
	}

	s.logger.Debug("evaluation archived", "run_id", runID, "score", ev.Score)
	return runID, nil
}

// ArchiveImprovement stores the original and improved code, a markdown
// report and the summary JSON, then records the run. The session ID is used
// as the run ID.
func (s *Service) ArchiveImprovement(ctx context.Context, sum *improve.Summary) (string, error) {
	runID := sum.SessionID
	if runID == "" {
		runID = uuid.NewString()
	}

	var report, payload bytes.Buffer
	if err := (&surface.MarkdownRenderer{}).RenderSummary(&report, sum); err != nil {
		return runID, fmt.Errorf("render report: %w", err)
	}
	if err := (&surface.JSONRenderer{}).RenderSummary(&payload, sum); err != nil {
		return runID, fmt.Errorf("render summary: %w", err)
	}

	refs, err := s.putAll(ctx, runID, map[string][]byte{
		ArtifactOriginal: []byte(sum.OriginalCode),
		ArtifactImproved: []byte(sum.ImprovedCode),
		ArtifactReport:   report.Bytes(),
		ArtifactSummary:  payload.Bytes(),
	})
	if err != nil {
		return runID, err
	}

	createdAt := sum.FinishedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	err = s.runs.RecordImprovement(ctx, store.ImprovementRun{
		ID:                  runID,
		CreatedAt:           createdAt,
		Prompt:              sum.Prompt,
		OriginalScore:       sum.OriginalScore.TotalScore,
		FinalScore:          sum.FinalScore.TotalScore,
		Rating:              string(sum.FinalScore.Rating),
		Breakdown:           sum.FinalScore.Breakdown,
		Iterations:          sum.Iterations,
		RequestedIterations: sum.RequestedIterations,
		RecommendationCount: len(sum.Recommendations),
		StopReason:          string(sum.StopReason),
		Error:               sum.Error,
		ReportRef:           refs[ArtifactReport],
	})
	if err != nil {
		return runID, fmt.Errorf("archive improvement: %w", err)
	}

	s.logger.Debug("improvement archived", "run_id", runID,
		"original_score", sum.OriginalScore.TotalScore,
		"final_score", sum.FinalScore.TotalScore)
	return runID, nil
}

// Report returns a stored artifact of a run.
func (s *Service) Report(ctx context.Context, runID, name string) ([]byte, error) {
	return s.blobs.GetReport(ctx, runID, name)
}

func (s *Service) putAll(ctx context.Context, runID string, artifacts map[string][]byte) (map[string]string, error) {
	refs := make(map[string]string, len(artifacts))
	for name, data := range artifacts {
		ref, err := s.blobs.PutReport(ctx, runID, name, data)
		if err != nil {
			return nil, fmt.Errorf("store %s for run %s: %w", name, runID, err)
		}
		refs[name] = ref
	}
	return refs, nil
}
