package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/readyscore/readyscore/internal/archive"
	"github.com/readyscore/readyscore/internal/blob"
	"github.com/readyscore/readyscore/internal/store"
)

func newHistoryCmd(g *globalOpts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List archived runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runHistory(cmd.Context(), g, runID, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", store.DefaultListLimit, "Maximum number of runs to list")

	return cmd
}

func runHistory(ctx context.Context, g *globalOpts, runID string, limit int) error {
	e, err := loadEnv(g, os.Stderr)
	if err != nil {
		return err
	}
	runs, err := store.Open(ctx, store.Backend(e.cfg.Store.Backend), e.cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer runs.Close()

	if runID != "" {
		run, err := runs.GetRun(ctx, runID)
		if err != nil {
			return fmt.Errorf("loading run %s: %w", runID, err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	list, err := runs.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if g.output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	return renderRuns(os.Stdout, list)
}

func renderRuns(w io.Writer, runs []store.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	data := make([][]string, 0, len(runs))
	for _, r := range runs {
		score := strconv.Itoa(r.FinalScore)
		if r.Kind == store.KindImprovement {
			score = fmt.Sprintf("%d -> %d", r.OriginalScore, r.FinalScore)
		}
		data = append(data, []string{
			r.ID,
			string(r.Kind),
			r.CreatedAt.Local().Format(time.DateTime),
			score,
			r.Rating,
			strconv.Itoa(r.Iterations),
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "Kind", "When", "Score", "Rating", "Iterations"})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// openArchive connects the configured run store and blob storage. The
// returned func releases both.
func openArchive(ctx context.Context, e *env) (*archive.Service, func(), error) {
	runs, err := store.Open(ctx, store.Backend(e.cfg.Store.Backend), e.cfg.Store.DSN)
	if err != nil {
		return nil, nil, err
	}
	blobs, err := blob.Open(ctx, blob.Options{
		Backend:  e.cfg.Blob.Backend,
		Path:     e.cfg.Blob.Path,
		Bucket:   e.cfg.Blob.Bucket,
		Region:   e.cfg.Blob.Region,
		Endpoint: e.cfg.Blob.Endpoint,
	})
	if err != nil {
		runs.Close()
		return nil, nil, err
	}
	closeAll := func() {
		if c, ok := blobs.(io.Closer); ok {
			_ = c.Close()
		}
		_ = runs.Close()
	}
	return archive.NewService(runs, blobs, e.logger), closeAll, nil
}
