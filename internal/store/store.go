// Package store keeps a history of evaluation and improvement runs.
// Only summaries are persisted; in-flight improvement sessions never are.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Backend names a run history database.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
	BackendNone     Backend = "none"
)

// Kind distinguishes evaluation runs from improvement runs.
type Kind string

const (
	KindEvaluation  Kind = "evaluation"
	KindImprovement Kind = "improvement"
)

// ErrNotFound is returned by GetRun for an unknown id.
var ErrNotFound = errors.New("run not found")

// DefaultListLimit caps ListRuns when the caller passes a non-positive limit.
const DefaultListLimit = 50

// EvaluationRun is the persisted summary of one evaluation.
type EvaluationRun struct {
	ID                  string
	CreatedAt           time.Time
	Score               int
	Rating              string
	Breakdown           map[string]int
	RecommendationCount int
	ReportRef           string
}

// ImprovementRun is the persisted summary of one improvement session.
type ImprovementRun struct {
	ID                  string
	CreatedAt           time.Time
	Prompt              string
	OriginalScore       int
	FinalScore          int
	Rating              string
	Breakdown           map[string]int
	Iterations          int
	RequestedIterations int
	RecommendationCount int
	StopReason          string
	Error               string
	ReportRef           string
}

// Run is a row of run history as read back.
type Run struct {
	ID                  string         `json:"id"`
	Kind                Kind           `json:"kind"`
	CreatedAt           time.Time      `json:"created_at"`
	Prompt              string         `json:"prompt,omitempty"`
	OriginalScore       int            `json:"original_score"`
	FinalScore          int            `json:"final_score"`
	Rating              string         `json:"rating"`
	Breakdown           map[string]int `json:"breakdown,omitempty"`
	Iterations          int            `json:"iterations"`
	RequestedIterations int            `json:"requested_iterations"`
	RecommendationCount int            `json:"recommendation_count"`
	StopReason          string         `json:"stop_reason,omitempty"`
	Error               string         `json:"error,omitempty"`
	ReportRef           string         `json:"report_ref,omitempty"`
}

// Store records and reads run history.
type Store interface {
	RecordEvaluation(ctx context.Context, run EvaluationRun) error
	RecordImprovement(ctx context.Context, run ImprovementRun) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	Close() error
}

// SQLStore implements Store on database/sql.
type SQLStore struct {
	db      *sql.DB
	backend Backend
}

var _ Store = (*SQLStore)(nil)

// Open connects to the backend, applies migrations and returns a Store.
// BackendNone returns a store that discards writes.
func Open(ctx context.Context, backend Backend, dsn string) (Store, error) {
	var driverName string
	switch backend {
	case BackendSQLite:
		driverName = "sqlite"
		if dsn == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	case BackendPostgres:
		driverName = "postgres"
	case BackendMySQL:
		driverName = "mysql"
	case BackendNone, "":
		return nopStore{}, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", backend, err)
	}
	if backend == BackendSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s database: %w", backend, err)
	}

	if err := Migrate(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLStore{db: db, backend: backend}, nil
}

const insertRun = `INSERT INTO runs (
	id, kind, created_at, prompt, original_score, final_score, rating,
	iterations, requested_iterations, recommendation_count, stop_reason,
	error_message, breakdown, report_ref
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectRun = `SELECT id, kind, created_at, prompt, original_score, final_score, rating,
	iterations, requested_iterations, recommendation_count, stop_reason,
	error_message, breakdown, report_ref FROM runs`

func (s *SQLStore) RecordEvaluation(ctx context.Context, run EvaluationRun) error {
	breakdown, err := encodeBreakdown(run.Breakdown)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(insertRun),
		run.ID, string(KindEvaluation), toMillis(run.CreatedAt), "",
		run.Score, run.Score, run.Rating,
		0, 0, run.RecommendationCount, "",
		"", breakdown, run.ReportRef,
	)
	if err != nil {
		return fmt.Errorf("record evaluation %s: %w", run.ID, err)
	}
	return nil
}

func (s *SQLStore) RecordImprovement(ctx context.Context, run ImprovementRun) error {
	breakdown, err := encodeBreakdown(run.Breakdown)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(insertRun),
		run.ID, string(KindImprovement), toMillis(run.CreatedAt), run.Prompt,
		run.OriginalScore, run.FinalScore, run.Rating,
		run.Iterations, run.RequestedIterations, run.RecommendationCount, run.StopReason,
		run.Error, breakdown, run.ReportRef,
	)
	if err != nil {
		return fmt.Errorf("record improvement %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		s.rebind(selectRun+` ORDER BY created_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (s *SQLStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(selectRun+` WHERE id = ?`), id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.backend != BackendPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run       Run
		kind      string
		createdAt int64
		breakdown string
	)
	err := sc.Scan(&run.ID, &kind, &createdAt, &run.Prompt, &run.OriginalScore, &run.FinalScore,
		&run.Rating, &run.Iterations, &run.RequestedIterations, &run.RecommendationCount,
		&run.StopReason, &run.Error, &breakdown, &run.ReportRef)
	if err != nil {
		return nil, err
	}
	run.Kind = Kind(kind)
	run.CreatedAt = time.UnixMilli(createdAt).UTC()
	if breakdown != "" {
		if err := json.Unmarshal([]byte(breakdown), &run.Breakdown); err != nil {
			return nil, fmt.Errorf("decode breakdown: %w", err)
		}
	}
	return &run, nil
}

func encodeBreakdown(b map[string]int) (string, error) {
	if b == nil {
		return "{}", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode breakdown: %w", err)
	}
	return string(data), nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UnixMilli()
}

// nopStore is used when run history is disabled.
type nopStore struct{}

func (nopStore) RecordEvaluation(context.Context, EvaluationRun) error   { return nil }
func (nopStore) RecordImprovement(context.Context, ImprovementRun) error { return nil }
func (nopStore) ListRuns(context.Context, int) ([]Run, error)            { return []Run{}, nil }
func (nopStore) GetRun(_ context.Context, id string) (*Run, error) {
	return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
}
func (nopStore) Close() error { return nil }
