package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/readyscore/readyscore/internal/setup"
)

func newGenerateCmd(g *globalOpts) *cobra.Command {
	var (
		prompt     string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate code for a task and score it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), g, prompt, outputFile)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Task description (required)")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "Write the generated code to this file")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func runGenerate(ctx context.Context, g *globalOpts, prompt, outputFile string) error {
	e, err := loadEnv(g, os.Stderr)
	if err != nil {
		return err
	}
	gen, info, err := setup.Generator(ctx, e.cfg.Generator, e.logger)
	if err != nil {
		return err
	}
	ev, err := e.evaluator()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Generating with %s...\n", info.Name)
	code, err := gen.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(code), 0o644); err != nil {
			return fmt.Errorf("writing generated code: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Code written to %s\n", outputFile)
	} else if g.output == "text" {
		fmt.Println(code)
		fmt.Println()
	}

	fmt.Fprintf(os.Stderr, "Evaluating...\n")
	res, err := ev.Evaluate(ctx, code)
	if err != nil {
		return fmt.Errorf("evaluating generated code: %w", err)
	}
	return e.renderer.RenderEvaluation(os.Stdout, res)
}
