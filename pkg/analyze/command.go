package analyze

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/readyscore/readyscore/pkg/metrics"
)

// DefaultTimeout bounds a single analyzer process.
const DefaultTimeout = 30 * time.Second

// CommandAnalyzer runs an external analyzer process. The code is written to
// the process's stdin and a JSON metrics record is read from its stdout.
type CommandAnalyzer struct {
	Path     string   // executable, e.g. "readyscore-analyze-py"
	Args     []string // extra arguments
	Dir      string   // working directory ("" for current)
	Timeout  time.Duration
	Language string // exported to the process as READYSCORE_LANGUAGE
}

// Analyze implements Analyzer.
func (a *CommandAnalyzer) Analyze(ctx context.Context, code string) (*metrics.Record, error) {
	if a.Path == "" {
		return nil, errors.New("analyzer command not configured")
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.Path, a.Args...)
	cmd.Dir = a.Dir
	cmd.WaitDelay = time.Second
	cmd.Stdin = strings.NewReader(code)
	if a.Language != "" {
		cmd.Env = append(os.Environ(), "READYSCORE_LANGUAGE="+a.Language)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("analyzer %s timed out after %s: %w", a.Path, timeout, ctx.Err())
		}
		return nil, fmt.Errorf("analyzer %s failed: %w\nstderr: %s", a.Path, err, truncate(stderr.String(), 2048))
	}

	rec, err := metrics.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("analyzer %s: %w", a.Path, err)
	}
	return rec, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
