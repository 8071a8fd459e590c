package archive

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readyscore/readyscore/internal/blob"
	"github.com/readyscore/readyscore/internal/store"
	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/improve"
	"github.com/readyscore/readyscore/pkg/metrics"
)

func newService(t *testing.T) (*Service, store.Store, *blob.LocalStorage) {
	t.Helper()
	ctx := context.Background()
	runs, err := store.Open(ctx, store.BackendSQLite, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = runs.Close() })

	blobs := blob.NewLocalStorage(t.TempDir())
	return NewService(runs, blobs, nil), runs, blobs
}

func TestArchiveEvaluation(t *testing.T) {
	ctx := context.Background()
	svc, runs, _ := newService(t)

	ev := evaluate.FromMetrics(&metrics.Record{SyntaxOK: true, AvgComplexity: 3, HasDocstrings: true})
	runID, err := svc.ArchiveEvaluation(ctx, "def f():\n    pass\n", ev)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	run, err := runs.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, store.KindEvaluation, run.Kind)
	assert.Equal(t, ev.Score, run.FinalScore)
	assert.Equal(t, len(ev.Recommendations), run.RecommendationCount)
	assert.True(t, strings.HasSuffix(run.ReportRef, "report.md"))

	code, err := svc.Report(ctx, runID, ArtifactOriginal)
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    pass\n", string(code))

	report, err := svc.Report(ctx, runID, ArtifactReport)
	require.NoError(t, err)
	assert.Contains(t, string(report), "# Code Evaluation Report")
}

func TestArchiveImprovementUsesSessionID(t *testing.T) {
	ctx := context.Background()
	svc, runs, _ := newService(t)

	original := evaluate.FromMetrics(&metrics.Record{SyntaxOK: true})
	final := evaluate.FromMetrics(&metrics.Record{SyntaxOK: true, HasDocstrings: true})
	sum := &improve.Summary{
		SessionID:           "session-42",
		Prompt:              "Improve this code",
		OriginalCode:        "x = 1",
		ImprovedCode:        "x: int = 1",
		OriginalScore:       original.Result(),
		FinalScore:          final.Result(),
		OriginalEvaluation:  original.Metrics,
		FinalEvaluation:     final.Metrics,
		Iterations:          1,
		RequestedIterations: 3,
		StopReason:          improve.StopPlateau,
		FinishedAt:          time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	runID, err := svc.ArchiveImprovement(ctx, sum)
	require.NoError(t, err)
	assert.Equal(t, "session-42", runID)

	run, err := runs.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, store.KindImprovement, run.Kind)
	assert.Equal(t, original.Score, run.OriginalScore)
	assert.Equal(t, final.Score, run.FinalScore)
	assert.Equal(t, "plateau", run.StopReason)
	assert.True(t, sum.FinishedAt.Equal(run.CreatedAt))

	improved, err := svc.Report(ctx, runID, ArtifactImproved)
	require.NoError(t, err)
	assert.Equal(t, "x: int = 1", string(improved))

	summary, err := svc.Report(ctx, runID, ArtifactSummary)
	require.NoError(t, err)
	assert.Contains(t, string(summary), `"session_id": "session-42"`)
}

type failingBlobs struct{ blob.Discard }

func (failingBlobs) PutReport(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("bucket unavailable")
}

func TestArchiveBlobFailureSkipsRow(t *testing.T) {
	ctx := context.Background()
	runs, err := store.Open(ctx, store.BackendSQLite, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer runs.Close()

	svc := NewService(runs, failingBlobs{}, nil)
	ev := evaluate.FromMetrics(&metrics.Record{SyntaxOK: true})

	runID, err := svc.ArchiveEvaluation(ctx, "x = 1", ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")

	_, err = runs.GetRun(ctx, runID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
