package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	s, err := Open(context.Background(), BackendSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_NoneBackend(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, BackendNone, "")
	require.NoError(t, err)

	assert.NoError(t, s.RecordEvaluation(ctx, EvaluationRun{ID: "a"}))
	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = s.GetRun(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Close())
}

func TestOpen_UnsupportedBackend(t *testing.T) {
	_, err := Open(context.Background(), Backend("oracle"), "x")
	assert.Error(t, err)
}

func TestOpen_SQLiteRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), BackendSQLite, "")
	assert.Error(t, err)
}

func TestSQLite_RecordAndGet(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordEvaluation(ctx, EvaluationRun{
		ID:                  "eval-1",
		CreatedAt:           created,
		Score:               65,
		Rating:              "Needs Work",
		Breakdown:           map[string]int{"syntax": 20, "security": 20},
		RecommendationCount: 4,
		ReportRef:           "file:///tmp/eval-1/report.md",
	}))

	run, err := s.GetRun(ctx, "eval-1")
	require.NoError(t, err)
	assert.Equal(t, KindEvaluation, run.Kind)
	assert.Equal(t, 65, run.FinalScore)
	assert.Equal(t, 65, run.OriginalScore)
	assert.Equal(t, "Needs Work", run.Rating)
	assert.Equal(t, 4, run.RecommendationCount)
	assert.Equal(t, map[string]int{"syntax": 20, "security": 20}, run.Breakdown)
	assert.True(t, created.Equal(run.CreatedAt))
	assert.Equal(t, "file:///tmp/eval-1/report.md", run.ReportRef)
}

func TestSQLite_RecordImprovement(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.RecordImprovement(ctx, ImprovementRun{
		ID:                  "imp-1",
		Prompt:              "Improve this code",
		OriginalScore:       45,
		FinalScore:          80,
		Rating:              "Nearly Ready",
		Iterations:          2,
		RequestedIterations: 3,
		StopReason:          "generation_failed",
		Error:               "generation failure: rate limited",
	}))

	run, err := s.GetRun(ctx, "imp-1")
	require.NoError(t, err)
	assert.Equal(t, KindImprovement, run.Kind)
	assert.Equal(t, 45, run.OriginalScore)
	assert.Equal(t, 80, run.FinalScore)
	assert.Equal(t, 2, run.Iterations)
	assert.Equal(t, 3, run.RequestedIterations)
	assert.Equal(t, "generation_failed", run.StopReason)
	assert.Equal(t, "generation failure: rate limited", run.Error)
	assert.Empty(t, run.Breakdown)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestSQLite_GetRunNotFound(t *testing.T) {
	s := openSQLite(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_ListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.RecordEvaluation(ctx, EvaluationRun{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Score:     50 + i,
		}))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLite_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, s.RecordEvaluation(ctx, EvaluationRun{ID: "dup"}))
	assert.Error(t, s.RecordEvaluation(ctx, EvaluationRun{ID: "dup"}))
}

func TestSQLite_ReopenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := Open(ctx, BackendSQLite, path)
	require.NoError(t, err)
	require.NoError(t, s1.RecordEvaluation(ctx, EvaluationRun{ID: "keep", Score: 90}))
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, BackendSQLite, path)
	require.NoError(t, err)
	defer s2.Close()

	run, err := s2.GetRun(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, 90, run.FinalScore)
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{backend: BackendPostgres}
	assert.Equal(t, "SELECT * FROM runs WHERE id = $1 LIMIT $2", pg.rebind("SELECT * FROM runs WHERE id = ? LIMIT ?"))

	lite := &SQLStore{backend: BackendSQLite}
	assert.Equal(t, "WHERE id = ?", lite.rebind("WHERE id = ?"))
}
