package analyze

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "analyzer.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommandAnalyzerDecodesStdout(t *testing.T) {
	script := writeScript(t, `cat > /dev/null
echo '{"syntax_ok": true, "has_docstrings": true, "avg_complexity": 2.5, "maintainability": {"maintainability_index": 77}}'
`)
	a := &CommandAnalyzer{Path: script}

	rec, err := a.Analyze(context.Background(), "def f():\n    return 1\n")
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if !rec.SyntaxOK || !rec.HasDocstrings {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Maintainability == nil || rec.Maintainability.MaintainabilityIndex != 77 {
		t.Errorf("expected maintainability index 77, got %+v", rec.Maintainability)
	}
}

func TestCommandAnalyzerReceivesCodeAndLanguage(t *testing.T) {
	script := writeScript(t, `code=$(cat)
if [ "$code" = "x = 1" ] && [ "$READYSCORE_LANGUAGE" = "python" ]; then
  echo '{"syntax_ok": true}'
else
  echo '{"syntax_ok": false}'
fi
`)
	a := &CommandAnalyzer{Path: script, Language: "python"}

	rec, err := a.Analyze(context.Background(), "x = 1")
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if !rec.SyntaxOK {
		t.Error("expected the script to see the code on stdin and the language in its env")
	}
}

func TestCommandAnalyzerNonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "radon missing" >&2
exit 3
`)
	a := &CommandAnalyzer{Path: script}

	_, err := a.Analyze(context.Background(), "x = 1")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "radon missing") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestCommandAnalyzerBadJSON(t *testing.T) {
	script := writeScript(t, `echo "not json"
`)
	a := &CommandAnalyzer{Path: script}

	if _, err := a.Analyze(context.Background(), "x = 1"); err == nil {
		t.Fatal("expected error for undecodable output")
	}
}

func TestCommandAnalyzerTimeout(t *testing.T) {
	script := writeScript(t, `exec sleep 5
`)
	a := &CommandAnalyzer{Path: script, Timeout: 50 * time.Millisecond}

	_, err := a.Analyze(context.Background(), "x = 1")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestCommandAnalyzerUnconfigured(t *testing.T) {
	if _, err := (&CommandAnalyzer{}).Analyze(context.Background(), "x"); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  short  ", 10); got != "short" {
		t.Errorf("truncate = %q, want %q", got, "short")
	}
	if got := truncate("abcdefgh", 3); got != "abc..." {
		t.Errorf("truncate = %q, want %q", got, "abc...")
	}
}
