package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"moviepicker/internal/catalog"
	"moviepicker/internal/config"
	"moviepicker/internal/extraction"
	"moviepicker/internal/identification/omdb"
	"moviepicker/internal/logging"
	"moviepicker/internal/media"
	"moviepicker/internal/media/ffmpeg"
	"moviepicker/internal/media/ffprobe"
	"moviepicker/internal/notifications"
	"moviepicker/internal/pipeline"
	"moviepicker/internal/preflight"
	"moviepicker/internal/reel"
	"moviepicker/internal/resolver"
	"moviepicker/internal/services"
	"moviepicker/internal/services/llm"
	"moviepicker/internal/services/speech"
	"moviepicker/internal/watchlist"
)

// omdbAPI is what the CLI and API need from OMDb.
type omdbAPI interface {
	omdb.Searcher
	LookupID(ctx context.Context, imdbID string) (*omdb.Movie, error)
}

// application is the wired service graph shared by the CLI commands and the
// HTTP server.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    watchlist.Store
	omdb     omdbAPI
	pipeline *pipeline.Pipeline
	catalog  *catalog.Service
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := watchlist.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open watch-list: %w", err)
	}

	breakerSettings := services.DefaultBreakerSettings()

	var movies omdbAPI = omdb.Disabled{}
	if err := cfg.RequireOMDb(); err != nil {
		logger.Warn("omdb lookups disabled",
			logging.String(logging.FieldEventType, "omdb_unconfigured"),
			logging.String(logging.FieldErrorHint, err.Error()),
			logging.String(logging.FieldImpact, "title search, adds and reel matching will fail"),
		)
	} else {
		client, err := omdb.New(cfg.OMDb.APIKey, cfg.OMDb.BaseURL,
			omdb.WithRateLimit(cfg.OMDb.RequestsPerSecond),
			omdb.WithTimeout(time.Duration(cfg.OMDb.TimeoutSeconds)*time.Second),
			omdb.WithBreaker(services.NewBreaker("omdb", breakerSettings, logger)),
		)
		if err != nil {
			store.Close()
			return nil, err
		}
		movies = client
	}

	completer := llm.NewClient(llm.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	}, llm.WithBreaker(services.NewBreaker("openai", breakerSettings, logger)))

	transcriber := speech.NewClient(speech.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		Model:          cfg.OpenAI.TranscriptionModel,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	}, speech.WithBreaker(services.NewBreaker("openai-transcription", breakerSettings, logger)))

	prober := ffprobe.New(cfg.Reel.FFprobeBinary, media.ExecRunner)
	transcoder := ffmpeg.New(cfg.Reel.FFmpegBinary, prober, media.ExecRunner)

	fetcherOpts := []reel.FetcherOption{reel.WithCommandRunner(media.ExecRunner)}
	if cfg.Reel.PageCaptionFallback {
		fetcherOpts = append(fetcherOpts, reel.WithCaptionFallback(reel.NewPageCaption(&http.Client{Timeout: 15 * time.Second})))
	}
	fetcher := reel.NewFetcher(reel.FetcherConfig{
		VideoDir:       cfg.Paths.VideoDir,
		CookiesFile:    cfg.Paths.CookiesFile,
		RequireCookies: cfg.Reel.RequireCookies,
		YtDlpBinary:    cfg.Reel.YtDlpBinary,
	}, logger, fetcherOpts...)

	extractor := extraction.New(extraction.Config{
		VisionModel:       cfg.OpenAI.VisionModel,
		SearchModel:       cfg.OpenAI.SearchModel,
		SearchContextSize: cfg.OpenAI.SearchContextSize,
	}, completer, logger)

	runner := pipeline.New(pipeline.Config{
		TempDir:    cfg.Paths.TempDir,
		FrameCount: cfg.Reel.FrameCount,
	}, pipeline.Dependencies{
		Fetcher:     fetcher,
		Transcoder:  transcoder,
		Transcriber: transcriber,
		Extractor:   extractor,
		Resolver:    resolver.New(movies, cfg.Reel.MaxMatchesPerTitle, logger),
		Store:       store,
		Preflight:   preflight.NewChecker(cfg),
		Notifier:    notifications.NewService(cfg),
	}, logger)

	// Descriptions and recommendations are skipped or refused without a key.
	var textModel catalog.Completer
	if completer.Configured() {
		textModel = completer
	}

	return &application{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		omdb:     movies,
		pipeline: runner,
		catalog:  catalog.New(store, movies, textModel, cfg.OpenAI.TextModel, logger),
	}, nil
}

// Close releases the watch-list connection.
func (a *application) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}
