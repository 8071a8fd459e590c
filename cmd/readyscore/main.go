// Package main provides the readyscore CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/readyscore/readyscore/internal/setup"
	"github.com/readyscore/readyscore/pkg/config"
	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/surface"
)

var version = "dev"

// globalOpts are the persistent flags shared by every subcommand.
type globalOpts struct {
	configPath string
	verbose    bool
	output     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOpts{}

	rootCmd := &cobra.Command{
		Use:   "readyscore",
		Short: "Production-readiness scoring for generated code",
		Long: `Readyscore evaluates source code against a fixed production-readiness
rubric, explains what is missing, and can iteratively rewrite code with an
LLM until it scores better.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config file (default: search for .readyscore/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&g.output, "output", "o", "text", "Output format: text, json or markdown")

	rootCmd.AddCommand(
		newEvaluateCmd(g),
		newScoreCmd(g),
		newImproveCmd(g),
		newGenerateCmd(g),
		newHistoryCmd(g),
		newMCPCmd(g),
	)
	return rootCmd
}

// env is the configuration and services a command runs with.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	renderer surface.Renderer
}

// loadEnv reads configuration, installs the default logger and resolves the
// output renderer. Logs go to logOut so they never mix with rendered output.
func loadEnv(g *globalOpts, logOut io.Writer) (*env, error) {
	config.LoadDotEnv()

	path := g.configPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.FindConfigFile(wd)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if g.verbose {
		level = "debug"
	} else if level == "info" {
		level = "warn"
	}
	logger := setup.Logger(logOut, level, false)
	slog.SetDefault(logger)

	renderer, err := surface.ForFormat(g.output)
	if err != nil {
		return nil, err
	}
	if md, ok := renderer.(*surface.MarkdownRenderer); ok {
		md.Language = cfg.Generator.Language
	}
	return &env{cfg: cfg, logger: logger, renderer: renderer}, nil
}

// evaluator builds an evaluator around the configured analyzer.
func (e *env) evaluator() (*evaluate.Evaluator, error) {
	a, err := setup.Analyzer(e.cfg.Analyzer, e.cfg.Generator.Language)
	if err != nil {
		return nil, err
	}
	return evaluate.New(a), nil
}

func readSource(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
