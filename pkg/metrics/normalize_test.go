package metrics_test

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/readyscore/readyscore/pkg/metrics"
)

func TestNormalizeNil(t *testing.T) {
	n := metrics.Normalize(nil)
	if n.SyntaxOK {
		t.Error("expected syntax_ok false for nil record")
	}
	if n.Security.Present || n.Maintainability.Present || n.TestCoverage.Present {
		t.Error("expected no sub-records to be present")
	}
}

func TestNormalizeClampsOutOfRange(t *testing.T) {
	rec := &metrics.Record{
		SyntaxOK:      true,
		Functions:     -2,
		AvgComplexity: math.NaN(),
		Security:      &metrics.Security{SecurityIssues: -1, HighSeverity: -3},
		ErrorHandling: &metrics.ErrorHandling{BareExceptCount: -1},
		Maintainability: &metrics.Maintainability{
			MaintainabilityIndex: -10,
		},
		SolidPrinciples: &metrics.SolidPrinciples{SRPScore: 140},
	}

	n := metrics.Normalize(rec)

	if n.Functions != 0 {
		t.Errorf("expected functions 0, got %d", n.Functions)
	}
	if n.AvgComplexity != 0 {
		t.Errorf("expected avg_complexity 0, got %f", n.AvgComplexity)
	}
	if n.Security.SecurityIssues != 0 || n.Security.HighSeverity != 0 {
		t.Errorf("expected security counts clamped to 0, got %+v", n.Security)
	}
	if n.ErrorHandling.BareExceptCount != 0 {
		t.Errorf("expected bare_except_count 0, got %d", n.ErrorHandling.BareExceptCount)
	}
	if !n.Maintainability.Present || n.Maintainability.MaintainabilityIndex != 0 {
		t.Errorf("expected present maintainability with index 0, got %+v", n.Maintainability)
	}
	if n.SolidPrinciples.SRPScore != 100 {
		t.Errorf("expected srp_score capped at 100, got %f", n.SolidPrinciples.SRPScore)
	}

	// input untouched
	if rec.Functions != -2 || rec.Security.SecurityIssues != -1 {
		t.Error("Normalize must not modify its input")
	}
}

func TestNormalizeDedupesFrameworks(t *testing.T) {
	rec := &metrics.Record{
		TestCoverage: &metrics.TestCoverage{
			HasTests:       true,
			TestFrameworks: []string{"pytest", "unittest", "pytest"},
		},
	}
	n := metrics.Normalize(rec)
	want := []string{"pytest", "unittest"}
	if !reflect.DeepEqual(n.TestCoverage.TestFrameworks, want) {
		t.Errorf("expected %v, got %v", want, n.TestCoverage.TestFrameworks)
	}
}

func TestRecordErrors(t *testing.T) {
	rec := &metrics.Record{
		Security:        &metrics.Security{Error: "bandit not installed"},
		Maintainability: &metrics.Maintainability{},
	}
	errs := rec.Errors()
	if len(errs) != 1 || errs["security"] != "bandit not installed" {
		t.Errorf("unexpected errors map: %v", errs)
	}
	if (&metrics.Record{}).Errors() != nil {
		t.Error("expected nil errors for a clean record")
	}
}

func TestSaveLoadDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "metrics.json")

	rec := &metrics.Record{
		SyntaxOK:      true,
		AvgComplexity: 3,
		Maintainability: &metrics.Maintainability{
			MaintainabilityIndex: 90,
			Rating:               "A",
		},
	}
	if err := metrics.Save(path, rec); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := metrics.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Maintainability == nil || loaded.Maintainability.MaintainabilityIndex != 90 {
		t.Errorf("expected maintainability index 90, got %+v", loaded.Maintainability)
	}
	if loaded.Security != nil {
		t.Error("expected absent security sub-record to stay absent")
	}

	if _, err := metrics.Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error loading a missing file")
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := metrics.Load(path); err == nil {
		t.Error("expected error loading malformed JSON")
	}

	dec, err := metrics.Decode(strings.NewReader(`{"syntax_ok": true, "has_docstrings": true}`))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !dec.SyntaxOK || !dec.HasDocstrings {
		t.Errorf("unexpected decoded record: %+v", dec)
	}
}
