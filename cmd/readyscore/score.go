package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/metrics"
)

func newScoreCmd(g *globalOpts) *cobra.Command {
	var metricsPath string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a precomputed metrics record",
		Long: `Scores a metrics JSON document against the readiness rubric without running
the analyzer. Use --metrics - to read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(g, metricsPath)
		},
	}

	cmd.Flags().StringVar(&metricsPath, "metrics", "", "Path to metrics JSON (required)")
	_ = cmd.MarkFlagRequired("metrics")

	return cmd
}

func runScore(g *globalOpts, path string) error {
	e, err := loadEnv(g, os.Stderr)
	if err != nil {
		return err
	}

	var rec *metrics.Record
	if path == "-" {
		rec, err = metrics.Decode(os.Stdin)
	} else {
		rec, err = metrics.Load(path)
	}
	if err != nil {
		return fmt.Errorf("loading metrics: %w", err)
	}

	return e.renderer.RenderEvaluation(os.Stdout, evaluate.FromMetrics(rec))
}
