package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCompleter struct {
	last Request
	out  string
	err  error
}

func (r *recordingCompleter) Name() string { return "recording" }

func (r *recordingCompleter) Complete(_ context.Context, req Request) (string, error) {
	r.last = req
	return r.out, r.err
}

func TestClientGenerateStripsFences(t *testing.T) {
	rc := &recordingCompleter{out: "Here you go:\n```python\ndef f():\n    return 1\n```\nEnjoy."}
	c := NewClient(rc)

	code, err := c.Generate(context.Background(), "write f")
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return 1", code)
	assert.Equal(t, "write f", rc.last.User)
	assert.Equal(t, generateTemperature, rc.last.Temperature)
	assert.Equal(t, defaultMaxTokens, rc.last.MaxTokens)
	assert.Contains(t, rc.last.System, "expert Python developer")
}

func TestClientRewriteBuildsPrompt(t *testing.T) {
	rc := &recordingCompleter{out: "x = 2"}
	c := NewClient(rc, WithLanguage("go"), WithMaxTokens(1000))

	code, err := c.Rewrite(context.Background(), "x = 1", []string{"Add docs", "Implement tests"}, "make x")
	require.NoError(t, err)
	assert.Equal(t, "x = 2", code)
	assert.Equal(t, rewriteTemperature, rc.last.Temperature)
	assert.Equal(t, 1000, rc.last.MaxTokens)
	assert.Contains(t, rc.last.System, "expert Go developer")
	assert.Contains(t, rc.last.User, "1. Add docs\n2. Implement tests\n")
	assert.Contains(t, rc.last.User, "CURRENT CODE:\nx = 1")
	assert.Contains(t, rc.last.User, "ORIGINAL REQUIREMENT:\nmake x")
}

func TestClientEmptyOutput(t *testing.T) {
	c := NewClient(&recordingCompleter{out: "```python\n\n```"})
	_, err := c.Rewrite(context.Background(), "x = 1", nil, "")
	assert.ErrorIs(t, err, ErrEmptyOutput)
}

func TestClientWrapsProviderError(t *testing.T) {
	boom := errors.New("provider down")
	c := NewClient(&recordingCompleter{err: boom})
	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, boom)
	assert.True(t, strings.HasPrefix(err.Error(), "generate:"))
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		lang string
		want string
	}{
		{"plain", "  x = 1\n", "python", "x = 1"},
		{"tagged", "```python\nx = 1\n```", "python", "x = 1"},
		{"untagged", "text\n```\nx = 1\n```\nmore", "python", "x = 1"},
		{"other tag", "```py\nx = 1\n```", "python", "x = 1"},
		{"prefers tagged", "```\nnotes\n```\n```go\npackage main\n```", "go", "package main"},
		{"unterminated", "```python\nx = 1\n", "python", "x = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCode(tt.in, tt.lang))
		})
	}
}

func TestBuildRewritePromptDefaults(t *testing.T) {
	p := BuildRewritePrompt("", "code", nil, "ruby")
	assert.Contains(t, p, "ORIGINAL REQUIREMENT:\nImprove this code")
	assert.Contains(t, p, "You MUST address ALL 0 recommendations")
	assert.Contains(t, p, "improved ruby code")
}

func TestFallback(t *testing.T) {
	var g Generator = Fallback{}

	code, err := g.Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Contains(t, code, "def hello_world")

	same, err := g.Rewrite(context.Background(), "x = 1", []string{"Add docs"}, "")
	require.NoError(t, err)
	assert.Equal(t, "x = 1", same)
}
