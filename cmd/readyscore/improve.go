package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/readyscore/readyscore/internal/setup"
	"github.com/readyscore/readyscore/pkg/improve"
	"github.com/readyscore/readyscore/pkg/surface"
)

const defaultImprovePrompt = "Improve this code"

func newImproveCmd(g *globalOpts) *cobra.Command {
	var (
		prompt        string
		maxIterations int
		outputFile    string
		reportFile    string
		save          bool
	)

	cmd := &cobra.Command{
		Use:   "improve FILE",
		Short: "Iteratively rewrite code until it scores better",
		Long: `Evaluates FILE, asks the configured generator to address its
recommendations, and keeps the best-scoring version across iterations.
The score never goes down: a rewrite that scores worse is discarded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := improveOpts{
				path:       args[0],
				prompt:     prompt,
				outputFile: outputFile,
				reportFile: reportFile,
				save:       save,
			}
			if cmd.Flags().Changed("max-iterations") {
				opts.maxIterations = &maxIterations
			}
			return runImprove(cmd.Context(), g, opts)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", defaultImprovePrompt, "Task description the code was written for")
	cmd.Flags().IntVarP(&maxIterations, "max-iterations", "n", improve.DefaultMaxIterations, "Maximum number of rewrites (0 evaluates only)")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "Write the improved code to this file")
	cmd.Flags().StringVar(&reportFile, "report", "", "Write a markdown report to this file")
	cmd.Flags().BoolVar(&save, "save", false, "Archive the session to the configured run store")

	return cmd
}

type improveOpts struct {
	path          string
	prompt        string
	maxIterations *int
	outputFile    string
	reportFile    string
	save          bool
}

func runImprove(ctx context.Context, g *globalOpts, opts improveOpts) error {
	e, err := loadEnv(g, os.Stderr)
	if err != nil {
		return err
	}
	code, err := readSource(opts.path)
	if err != nil {
		return err
	}

	ev, err := e.evaluator()
	if err != nil {
		return err
	}
	gen, info, err := setup.Generator(ctx, e.cfg.Generator, e.logger)
	if err != nil {
		return err
	}
	if !info.Configured {
		fmt.Fprintf(os.Stderr, "  Hint: set GROQ_API_KEY or GEMINI_API_KEY for LLM rewrites\n")
	}

	maxIter := e.cfg.Improve.MaxIterations
	if opts.maxIterations != nil {
		maxIter = *opts.maxIterations
	}

	fmt.Fprintf(os.Stderr, "Improving %s with %s (up to %d iterations)\n", opts.path, info.Name, maxIter)
	loop := setup.Loop(ev, gen, e.cfg.Improve, e.logger, func(s improve.Step) {
		printStep(s, maxIter)
	})

	sum, err := loop.Improve(ctx, code, firstNonEmpty(opts.prompt, defaultImprovePrompt), maxIter)
	if sum == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: stopped early: %v\n", err)
	}

	if opts.outputFile != "" {
		if werr := os.WriteFile(opts.outputFile, []byte(sum.ImprovedCode), 0o644); werr != nil {
			return fmt.Errorf("writing improved code: %w", werr)
		}
		fmt.Fprintf(os.Stderr, "Improved code written to %s\n", opts.outputFile)
	}

	if opts.reportFile != "" {
		var buf bytes.Buffer
		md := &surface.MarkdownRenderer{Language: e.cfg.Generator.Language}
		if rerr := md.RenderSummary(&buf, sum); rerr != nil {
			return fmt.Errorf("rendering report: %w", rerr)
		}
		if werr := os.WriteFile(opts.reportFile, buf.Bytes(), 0o644); werr != nil {
			return fmt.Errorf("writing report: %w", werr)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", opts.reportFile)
	}

	if opts.save {
		arc, closeArchive, aerr := openArchive(ctx, e)
		if aerr != nil {
			return aerr
		}
		defer closeArchive()
		if runID, aerr := arc.ArchiveImprovement(ctx, sum); aerr != nil {
			fmt.Fprintf(os.Stderr, "  Warning: archiving session failed: %v\n", aerr)
		} else {
			fmt.Fprintf(os.Stderr, "Saved session as run %s\n", runID)
		}
	}

	if rerr := e.renderer.RenderSummary(os.Stdout, sum); rerr != nil {
		return rerr
	}
	return err
}

func printStep(s improve.Step, maxIter int) {
	if s.Iteration == 0 {
		fmt.Fprintf(os.Stderr, "Baseline: %d/100 (%s)\n", s.Score, s.Rating)
		return
	}
	status := "discarded"
	if s.Adopted {
		status = "adopted"
	}
	fmt.Fprintf(os.Stderr, "Iteration %d/%d: %d/100, %s (best %d)\n", s.Iteration, maxIter, s.Score, status, s.BestScore)
}
