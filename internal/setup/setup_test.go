package setup

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readyscore/readyscore/pkg/analyze"
	"github.com/readyscore/readyscore/pkg/config"
	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/generate"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	Logger(&buf, "info", true).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	Logger(&buf, "warn", false).Info("dropped")
	assert.Empty(t, buf.String())
}

func TestAnalyzer(t *testing.T) {
	_, err := Analyzer(config.AnalyzerConfig{}, "python")
	assert.Error(t, err)

	a, err := Analyzer(config.AnalyzerConfig{Command: "/bin/true"}, "python")
	require.NoError(t, err)
	cmd, ok := a.(*analyze.CommandAnalyzer)
	require.True(t, ok, "expected *analyze.CommandAnalyzer, got %T", a)
	assert.Equal(t, "python", cmd.Language)

	a, err = Analyzer(config.AnalyzerConfig{Command: "/bin/true", CacheSize: 8}, "")
	require.NoError(t, err)
	assert.IsType(t, &evaluate.CachingAnalyzer{}, a)
}

func TestAnalyzerRouting(t *testing.T) {
	a, err := Analyzer(config.AnalyzerConfig{
		Commands: map[string]string{"python": "py-analyzer", "java": "java-analyzer"},
	}, "")
	require.NoError(t, err)

	router, ok := a.(*analyze.Router)
	require.True(t, ok, "expected *analyze.Router, got %T", a)
	assert.Nil(t, router.Default)
	require.Len(t, router.ByLanguage, 2)

	py, ok := router.ByLanguage["python"].(*analyze.CommandAnalyzer)
	require.True(t, ok)
	assert.Equal(t, "py-analyzer", py.Path)
	assert.Equal(t, "python", py.Language)

	a, err = Analyzer(config.AnalyzerConfig{
		Command:  "generic-analyzer",
		Commands: map[string]string{"go": "go-analyzer"},
	}, "")
	require.NoError(t, err)
	router = a.(*analyze.Router)
	require.NotNil(t, router.Default)
	assert.Equal(t, "generic-analyzer", router.Default.(*analyze.CommandAnalyzer).Path)
}

func TestGeneratorSelection(t *testing.T) {
	ctx := context.Background()
	base := config.DefaultConfig().Generator

	t.Run("auto without keys falls back", func(t *testing.T) {
		gen, info, err := Generator(ctx, base, nil)
		require.NoError(t, err)
		assert.IsType(t, generate.Fallback{}, gen)
		assert.Equal(t, "fallback", info.Name)
		assert.False(t, info.Configured)
	})

	t.Run("auto with groq key", func(t *testing.T) {
		cfg := base
		cfg.GroqAPIKey = "gsk_test"
		gen, info, err := Generator(ctx, cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &generate.Client{}, gen)
		assert.True(t, info.Configured)
		assert.True(t, strings.HasPrefix(info.Name, "groq:"), info.Name)
	})

	t.Run("explicit groq without key", func(t *testing.T) {
		cfg := base
		cfg.Provider = "groq"
		_, _, err := Generator(ctx, cfg, nil)
		assert.Error(t, err)
	})

	t.Run("explicit gemini without key", func(t *testing.T) {
		cfg := base
		cfg.Provider = "gemini"
		_, _, err := Generator(ctx, cfg, nil)
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := base
		cfg.Provider = "openai"
		_, _, err := Generator(ctx, cfg, nil)
		assert.Error(t, err)
	})
}
