package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"moviepicker/internal/api"
	"moviepicker/internal/config"
	"moviepicker/internal/deps"
	"moviepicker/internal/logging"
	"moviepicker/internal/staging"
)

const lockFileName = "moviepicker.lock"

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var strictDeps bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(bind) != "" {
				cfg.Server.Bind = strings.TrimSpace(bind)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, lockFileName))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another moviepicker server is already running")
			}
			defer lock.Unlock()

			if err := checkServeDependencies(cfg, logger, strictDeps); err != nil {
				return err
			}
			cleanStaleRuns(cmd.Context(), cfg, logger)

			return ctx.withApp(cmd.Context(), func(app *application) error {
				return serve(cmd.Context(), app, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind (host:port)")
	cmd.Flags().BoolVar(&strictDeps, "strict-deps", false, "Refuse to start when yt-dlp or FFmpeg is missing")
	return cmd
}

func checkServeDependencies(cfg *config.Config, logger *slog.Logger, strict bool) error {
	err := deps.MissingError(deps.CheckReel(cfg))
	if err == nil {
		return nil
	}
	if strict {
		return err
	}
	logger.Warn("reel tools unavailable",
		logging.String(logging.FieldEventType, "dependency_missing"),
		logging.String(logging.FieldErrorHint, err.Error()),
		logging.String(logging.FieldImpact, "reel search and import will fail until the tools are installed"),
	)
	return nil
}

func cleanStaleRuns(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	result := staging.CleanStale(ctx, cfg.Paths.TempDir, cfg.StaleTempAge(), logger)
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		return
	}
	logger.Info("stale run directories cleaned",
		logging.String(logging.FieldEventType, "temp_cleanup"),
		logging.Int("removed", len(result.Removed)),
		logging.Int("errors", len(result.Errors)),
	)
}

// serve blocks until ctx is cancelled.
func serve(ctx context.Context, app *application, out io.Writer) error {
	cfg := app.cfg
	router := api.NewRouter(api.Options{
		APIToken:              cfg.Server.APIToken,
		CORSOrigins:           cfg.Server.CORSOrigins,
		PipelineRatePerMinute: cfg.Server.PipelineRatePerMinute,
		PipelineTimeout:       cfg.PipelineTimeout(),
	}, api.Dependencies{
		Pipeline: app.pipeline,
		Catalog:  app.catalog,
		Store:    app.store,
		Searcher: app.omdb,
	}, app.logger)

	server, err := api.NewServer(cfg.Server.Bind, router, cfg.PipelineTimeout(), app.logger)
	if err != nil {
		return err
	}
	if err := server.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Listening on http://%s\n", server.Addr())
	if cfg.Server.APIToken == "" {
		fmt.Fprintln(out, "Warning: server.api_token is empty; the API accepts unauthenticated requests")
	}

	<-ctx.Done()
	server.Stop()
	return nil
}
