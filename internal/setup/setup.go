// Package setup builds the analyzer, generator and improvement loop from
// configuration. It is shared by the CLI and the daemon.
package setup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/readyscore/readyscore/pkg/analyze"
	"github.com/readyscore/readyscore/pkg/config"
	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/generate"
	"github.com/readyscore/readyscore/pkg/improve"
)

// Logger returns a slog logger writing to w at the named level.
func Logger(w io.Writer, level string, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Analyzer builds the external analyzer, behind an LRU cache when
// cfg.CacheSize is positive. When cfg.Commands is set, code is routed to a
// per-language command by DetectLanguage.
func Analyzer(cfg config.AnalyzerConfig, language string) (analyze.Analyzer, error) {
	if cfg.Command == "" && len(cfg.Commands) == 0 {
		return nil, fmt.Errorf("no analyzer command configured (set analyzer.command or READYSCORE_ANALYZER)")
	}

	var a analyze.Analyzer
	if cfg.Command != "" {
		a = commandAnalyzer(cfg, cfg.Command, language)
	}
	if len(cfg.Commands) > 0 {
		router := &analyze.Router{ByLanguage: make(map[string]analyze.Analyzer, len(cfg.Commands)), Default: a}
		for lang, path := range cfg.Commands {
			router.ByLanguage[lang] = commandAnalyzer(cfg, path, lang)
		}
		a = router
	}

	if cfg.CacheSize > 0 {
		cached, err := evaluate.NewCachingAnalyzer(a, cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating analysis cache: %w", err)
		}
		a = cached
	}
	return a, nil
}

func commandAnalyzer(cfg config.AnalyzerConfig, path, language string) *analyze.CommandAnalyzer {
	return &analyze.CommandAnalyzer{
		Path:     path,
		Args:     cfg.Args,
		Timeout:  cfg.Timeout,
		Language: language,
	}
}

// GeneratorInfo describes the generator that was selected.
type GeneratorInfo struct {
	Name       string
	Configured bool // false for the offline fallback
}

// Generator selects a code generator. Provider "auto" prefers Groq, then
// Gemini, by which API key is present, and falls back to the offline
// generator when neither is.
func Generator(ctx context.Context, cfg config.GeneratorConfig, logger *slog.Logger) (generate.Generator, GeneratorInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	provider := cfg.Provider
	if provider == "auto" || provider == "" {
		switch {
		case cfg.GroqAPIKey != "":
			provider = "groq"
		case cfg.GeminiAPIKey != "":
			provider = "gemini"
		default:
			provider = "fallback"
		}
	}

	var completer generate.Completer
	switch provider {
	case "groq":
		if cfg.GroqAPIKey == "" {
			return nil, GeneratorInfo{}, fmt.Errorf("groq generator selected but GROQ_API_KEY is not set")
		}
		opts := []generate.GroqOption{generate.WithGroqLogger(logger)}
		if len(cfg.Models) > 0 {
			opts = append(opts, generate.WithModels(cfg.Models...))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, generate.WithHTTPTimeout(cfg.Timeout))
		}
		if cfg.RequestsPerMinute > 0 {
			opts = append(opts, generate.WithRateLimit(cfg.RequestsPerMinute, cfg.Burst))
		}
		completer = generate.NewGroqClient(cfg.GroqAPIKey, opts...)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, GeneratorInfo{}, fmt.Errorf("gemini generator selected but GEMINI_API_KEY is not set")
		}
		gc, err := generate.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, GeneratorInfo{}, err
		}
		completer = gc
	case "fallback":
		logger.Warn("no generator API key configured, using offline fallback generator")
		fb := generate.Fallback{}
		return fb, GeneratorInfo{Name: fb.Name()}, nil
	default:
		return nil, GeneratorInfo{}, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}

	completer = generate.Wrap(completer,
		generate.Retry(cfg.Retries+1, 500*time.Millisecond),
		generate.WithLogging(logger),
	)
	client := generate.NewClient(completer,
		generate.WithLanguage(cfg.Language),
		generate.WithMaxTokens(cfg.MaxTokens),
		generate.WithClientLogger(logger),
	)
	return client, GeneratorInfo{Name: client.Name(), Configured: true}, nil
}

// Loop builds an improvement loop from configuration.
func Loop(ev improve.Evaluator, rw improve.Rewriter, cfg config.ImproveConfig, logger *slog.Logger, onStep func(improve.Step)) *improve.Loop {
	return improve.New(ev, rw, improve.Options{
		IterationTimeout: cfg.IterationTimeout,
		Patience:         cfg.Patience,
		OnStep:           onStep,
		Logger:           logger,
	})
}
