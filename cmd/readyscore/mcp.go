package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/readyscore/readyscore/internal/mcp"
	"github.com/readyscore/readyscore/internal/setup"
)

func newMCPCmd(g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve readyscore tools over the Model Context Protocol (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol; logs must stay on stderr.
			e, err := loadEnv(g, os.Stderr)
			if err != nil {
				return err
			}
			ev, err := e.evaluator()
			if err != nil {
				return err
			}
			gen, _, err := setup.Generator(cmd.Context(), e.cfg.Generator, e.logger)
			if err != nil {
				return err
			}
			return mcp.StartMCPServer(cmd.Context(), mcp.Deps{
				Evaluator: ev,
				Generator: gen,
				Loop:      setup.Loop(ev, gen, e.cfg.Improve, e.logger, nil),
				Version:   version,
			})
		},
	}
}
