package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/metrics"
)

func newEvaluateCmd(g *globalOpts) *cobra.Command {
	var (
		concurrency int
		save        bool
		metricsDir  string
	)

	cmd := &cobra.Command{
		Use:   "evaluate [files...|-]",
		Short: "Score source files for production readiness",
		Long: `Runs the configured analyzer on each file, scores the metrics against the
readiness rubric, and prints the breakdown with recommendations. Use - to read
from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), g, evaluateOpts{
				paths:       args,
				concurrency: concurrency,
				save:        save,
				metricsDir:  metricsDir,
			})
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 4, "Number of files analyzed in parallel")
	cmd.Flags().BoolVar(&save, "save", false, "Archive results to the configured run store")
	cmd.Flags().StringVar(&metricsDir, "save-metrics", "", "Write each file's raw metrics as JSON into this directory (rescore later with 'score --metrics')")

	return cmd
}

type evaluateOpts struct {
	paths       []string
	concurrency int
	save        bool
	metricsDir  string
}

type fileResult struct {
	path string
	code string
	eval *evaluate.Evaluation
}

func runEvaluate(ctx context.Context, g *globalOpts, opts evaluateOpts) error {
	e, err := loadEnv(g, os.Stderr)
	if err != nil {
		return err
	}
	ev, err := e.evaluator()
	if err != nil {
		return err
	}

	results := make([]fileResult, len(opts.paths))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(max(opts.concurrency, 1))
	for i, path := range opts.paths {
		grp.Go(func() error {
			code, err := readSource(path)
			if err != nil {
				return err
			}
			if len(opts.paths) > 1 {
				fmt.Fprintf(os.Stderr, "Evaluating %s...\n", path)
			}
			res, err := ev.Evaluate(gctx, code)
			if err != nil {
				return fmt.Errorf("evaluating %s: %w", path, err)
			}
			results[i] = fileResult{path: path, code: code, eval: res}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	if opts.metricsDir != "" {
		for _, r := range results {
			out := metricsPath(opts.metricsDir, r.path)
			if err := metrics.Save(out, r.eval.Metrics); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Metrics for %s written to %s\n", r.path, out)
		}
	}

	if opts.save {
		arc, closeArchive, err := openArchive(ctx, e)
		if err != nil {
			return err
		}
		defer closeArchive()
		for _, r := range results {
			runID, err := arc.ArchiveEvaluation(ctx, r.code, r.eval)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  Warning: archiving %s failed: %v\n", r.path, err)
				continue
			}
			fmt.Fprintf(os.Stderr, "Saved %s as run %s\n", r.path, runID)
		}
	}

	for i, r := range results {
		if len(results) > 1 && g.output == "text" {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("==> %s <==\n", r.path)
		}
		if err := e.renderer.RenderEvaluation(os.Stdout, r.eval); err != nil {
			return err
		}
	}
	return nil
}

// metricsPath names the metrics file for a source path; stdin becomes
// "stdin.metrics.json".
func metricsPath(dir, source string) string {
	base := "stdin"
	if source != "-" {
		base = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	return filepath.Join(dir, base+".metrics.json")
}
