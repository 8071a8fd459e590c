// Command readyscored is the readyscore HTTP service.
// It serves the generation, evaluation, scoring and improvement API and
// archives every run to the configured store.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/readyscore/readyscore/internal/api"
	"github.com/readyscore/readyscore/internal/archive"
	"github.com/readyscore/readyscore/internal/blob"
	"github.com/readyscore/readyscore/internal/setup"
	"github.com/readyscore/readyscore/internal/store"
	"github.com/readyscore/readyscore/pkg/config"
	"github.com/readyscore/readyscore/pkg/evaluate"
)

var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "readyscored",
		Short:         "Readyscore HTTP service",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger := setup.Logger(os.Stderr, cfg.LogLevel, true)
			slog.SetDefault(logger)
			return run(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error("readyscored exited", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	runs, err := store.Open(ctx, store.Backend(cfg.Store.Backend), cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer runs.Close()

	blobs, err := blob.Open(ctx, blob.Options{
		Backend:  cfg.Blob.Backend,
		Path:     cfg.Blob.Path,
		Bucket:   cfg.Blob.Bucket,
		Region:   cfg.Blob.Region,
		Endpoint: cfg.Blob.Endpoint,
	})
	if err != nil {
		return err
	}
	if c, ok := blobs.(io.Closer); ok {
		defer c.Close()
	}

	analyzer, err := setup.Analyzer(cfg.Analyzer, cfg.Generator.Language)
	if err != nil {
		return err
	}
	gen, info, err := setup.Generator(ctx, cfg.Generator, logger)
	if err != nil {
		return err
	}

	ev := evaluate.New(analyzer)
	loop := setup.Loop(ev, gen, cfg.Improve, logger, nil)
	archiver := archive.NewService(runs, blobs, logger)

	handler := api.NewHandler(ev, gen, loop, archiver, runs, api.Options{
		GeneratorName:       info.Name,
		GeneratorConfigured: info.Configured,
		MaxIterations:       cfg.Improve.MaxIterations,
		MaxBodyBytes:        cfg.Server.MaxBodyBytes,
		Logger:              logger,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           handler.Routes(cfg.Server.APIKey),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting readyscored",
			"version", version,
			"addr", srv.Addr,
			"generator", info.Name,
			"store", cfg.Store.Backend,
			"blob", cfg.Blob.Backend,
			"auth", cfg.Server.APIKey != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
