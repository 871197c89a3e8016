package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"moviepicker/internal/extraction"
	"moviepicker/internal/logging"
	"moviepicker/internal/metrics"
	"moviepicker/internal/movieid"
	"moviepicker/internal/reel"
	"moviepicker/internal/resolver"
	"moviepicker/internal/services"
	"moviepicker/internal/watchlist"
)

// Run modes.
const (
	ModeSearch = "search"
	ModeImport = "import"
)

// Stage names.
const (
	StagePreflight  = "preflight"
	StageFetch      = "fetch"
	StageAudio      = "audio"
	StageFrames     = "frames"
	StageTranscribe = "transcribe"
	StageExtract    = "extract"
	StageResolve    = "resolve"
	StagePersist    = "persist"
)

// DefaultFrameCount is the number of frames sampled in vision mode.
const DefaultFrameCount = 3

// Fetcher downloads a reel.
type Fetcher interface {
	Fetch(ctx context.Context, ref reel.Reference) (reel.Asset, error)
}

// Transcoder derives audio and frames from a video.
type Transcoder interface {
	ExtractAudio(ctx context.Context, videoPath, outDir string) (string, error)
	ExtractFrames(ctx context.Context, videoPath, outDir string, n int) ([]string, error)
}

// Transcriber turns speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Extractor finds movie mentions in a transcript, caption and frames.
type Extractor interface {
	Extract(ctx context.Context, in extraction.Input) ([]extraction.Mention, error)
}

// Resolver maps a mention to OMDb matches.
type Resolver interface {
	Resolve(ctx context.Context, mention extraction.Mention, seen resolver.Seen) ([]resolver.Match, error)
}

// Store is the subset of the watch-list used by imports.
type Store interface {
	GetByIMDbID(ctx context.Context, id movieid.ID) (*watchlist.Movie, error)
	Add(ctx context.Context, movie watchlist.NewMovie, source string) (*watchlist.Movie, error)
}

// Preflight verifies the environment before a run.
type Preflight interface {
	Check(ctx context.Context) error
}

// Notifier announces run outcomes.
type Notifier interface {
	NotifyImportCompleted(ctx context.Context, reelURL string, titles []string) error
	NotifyRunFailed(ctx context.Context, mode, reelURL string, err error) error
}

// Config holds run settings.
type Config struct {
	TempDir    string
	FrameCount int
}

// Dependencies are the collaborators a pipeline drives. Resolver is only
// needed for Search, Store only for Import. Preflight and Notifier are optional.
type Dependencies struct {
	Fetcher     Fetcher
	Transcoder  Transcoder
	Transcriber Transcriber
	Extractor   Extractor
	Resolver    Resolver
	Store       Store
	Preflight   Preflight
	Notifier    Notifier
}

// Pipeline orchestrates reel runs.
type Pipeline struct {
	cfg    Config
	deps   Dependencies
	logger *slog.Logger
}

// New constructs a pipeline.
func New(cfg Config, deps Dependencies, logger *slog.Logger) *Pipeline {
	if cfg.FrameCount <= 0 {
		cfg.FrameCount = DefaultFrameCount
	}
	return &Pipeline{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Search extracts the movies a reel mentions and returns their OMDb matches
// in mention order.
func (p *Pipeline) Search(ctx context.Context, rawURL string, vision bool) ([]resolver.Match, error) {
	matches := []resolver.Match{}
	err := p.run(ctx, ModeSearch, rawURL, vision, func(ctx context.Context, mentions []extraction.Mention) error {
		if p.deps.Resolver == nil {
			return services.Wrap(services.ErrConfiguration, StageResolve, "", "resolver not configured", nil)
		}
		return p.stage(ctx, StageResolve, func(ctx context.Context) error {
			seen := resolver.Seen{}
			for _, mention := range mentions {
				found, err := p.deps.Resolver.Resolve(ctx, mention, seen)
				if err != nil {
					return err
				}
				matches = append(matches, found...)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Import stores every mention of a reel in the watch-list and returns the
// entries it created. Mentions already present are skipped.
func (p *Pipeline) Import(ctx context.Context, rawURL string, vision bool) ([]watchlist.Movie, error) {
	created := []watchlist.Movie{}
	err := p.run(ctx, ModeImport, rawURL, vision, func(ctx context.Context, mentions []extraction.Mention) error {
		if p.deps.Store == nil {
			return services.Wrap(services.ErrConfiguration, StagePersist, "", "store not configured", nil)
		}
		return p.stage(ctx, StagePersist, func(ctx context.Context) error {
			for _, mention := range mentions {
				movie, err := p.persist(ctx, mention)
				if err != nil {
					return err
				}
				if movie != nil {
					created = append(created, *movie)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if len(created) > 0 && p.deps.Notifier != nil {
		titles := make([]string, 0, len(created))
		for _, m := range created {
			titles = append(titles, m.Title)
		}
		p.notify(ctx, "import_completed", func(ctx context.Context) error {
			return p.deps.Notifier.NotifyImportCompleted(ctx, rawURL, titles)
		})
	}
	return created, nil
}

// notify delivers a notification detached from the caller's deadline.
// Failures are logged only.
func (p *Pipeline) notify(ctx context.Context, event string, send func(context.Context) error) {
	if err := send(context.WithoutCancel(ctx)); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "notification failed", "notification_failed",
			logging.String("notification", event),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run result is unaffected"),
		)
	}
}

func (p *Pipeline) persist(ctx context.Context, mention extraction.Mention) (*watchlist.Movie, error) {
	entry := mentionEntry(mention)
	logger := logging.WithContext(ctx, p.logger)
	if entry.Title == "" {
		logging.WarnWithContext(logger, "skipping mention without a title", "mention_skipped",
			logging.String("imdb_id", entry.IMDbID.String()))
		return nil, nil
	}
	existing, err := p.deps.Store.GetByIMDbID(ctx, entry.IMDbID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Info("mention already in watch-list",
			logging.String(logging.FieldEventType, "mention_duplicate"),
			logging.String("imdb_id", entry.IMDbID.String()),
			logging.String("title", entry.Title),
		)
		return nil, nil
	}
	movie, err := p.deps.Store.Add(ctx, entry, watchlist.SourceInstagram)
	if errors.Is(err, services.ErrConflict) {
		logger.Info("mention added concurrently",
			logging.String(logging.FieldEventType, "mention_duplicate"),
			logging.String("imdb_id", entry.IMDbID.String()),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("mention imported",
		logging.String(logging.FieldEventType, "mention_imported"),
		logging.Int64("movie_id", movie.ID),
		logging.String("imdb_id", movie.IMDbID.String()),
		logging.String("title", movie.Title),
	)
	return movie, nil
}

// mentionEntry maps a mention to a watch-list entry keyed by its synthetic id.
func mentionEntry(m extraction.Mention) watchlist.NewMovie {
	entry := watchlist.NewMovie{
		IMDbID:      movieid.Synthetic(m.TitleEN, m.TitleRU),
		Title:       m.TitleRU,
		Description: m.Description,
	}
	if entry.Title == "" {
		entry.Title = m.TitleEN
	} else {
		entry.OriginalTitle = m.TitleEN
	}
	return entry
}

// run validates the URL, analyses the reel and hands the mentions to finish.
// Transient files are removed before run returns.
func (p *Pipeline) run(ctx context.Context, mode, rawURL string, vision bool, finish func(context.Context, []extraction.Mention) error) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRun(mode, outcome(err))
	}()

	ref, err := reel.ValidateURL(rawURL)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, runID)
	}
	ctx = services.WithReel(ctx, ref.Shortcode)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("reel run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("mode", mode),
		logging.String("run_id", runID),
		logging.Bool("vision", vision),
	)

	transient := &transientSet{logger: logger}
	defer transient.cleanup()

	mentions, err := p.analyze(ctx, runID, ref, vision, transient)
	if err == nil {
		err = finish(ctx, mentions)
	}
	if err != nil {
		logger.Warn("reel run failed",
			logging.String(logging.FieldEventType, "run_failed"),
			logging.String("mode", mode),
			logging.Duration("duration", time.Since(start)),
			logging.Bool("domain_error", services.IsDomain(err)),
			logging.Error(err),
		)
		if p.deps.Notifier != nil && !services.IsDomain(err) && !errors.Is(err, context.Canceled) {
			p.notify(ctx, "run_failed", func(ctx context.Context) error {
				return p.deps.Notifier.NotifyRunFailed(ctx, mode, ref.URL, err)
			})
		}
		return err
	}
	logger.Info("reel run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("mode", mode),
		logging.Int("mentions", len(mentions)),
		logging.Duration("duration", time.Since(start)),
	)
	return nil
}

func (p *Pipeline) analyze(ctx context.Context, runID string, ref reel.Reference, vision bool, transient *transientSet) ([]extraction.Mention, error) {
	if p.deps.Preflight != nil {
		if err := p.stage(ctx, StagePreflight, p.deps.Preflight.Check); err != nil {
			return nil, err
		}
	}

	runDir := filepath.Join(p.cfg.TempDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, StageAudio, "create run dir", runDir, err)
	}
	transient.add(runDir)

	var asset reel.Asset
	if err := p.stage(ctx, StageFetch, func(ctx context.Context) error {
		var err error
		asset, err = p.deps.Fetcher.Fetch(ctx, ref)
		return err
	}); err != nil {
		return nil, err
	}

	var audioPath string
	if err := p.stage(ctx, StageAudio, func(ctx context.Context) error {
		var err error
		audioPath, err = p.deps.Transcoder.ExtractAudio(ctx, asset.VideoPath, runDir)
		transient.add(audioPath)
		return err
	}); err != nil {
		return nil, err
	}

	var frames []string
	if vision {
		if err := p.stage(ctx, StageFrames, func(ctx context.Context) error {
			var err error
			frames, err = p.deps.Transcoder.ExtractFrames(ctx, asset.VideoPath, runDir, p.cfg.FrameCount)
			transient.add(frames...)
			return err
		}); err != nil {
			return nil, err
		}
	}

	var transcript string
	if err := p.stage(ctx, StageTranscribe, func(ctx context.Context) error {
		var err error
		transcript, err = p.deps.Transcriber.Transcribe(ctx, audioPath)
		return err
	}); err != nil {
		return nil, err
	}

	var mentions []extraction.Mention
	if err := p.stage(ctx, StageExtract, func(ctx context.Context) error {
		var err error
		mentions, err = p.deps.Extractor.Extract(ctx, extraction.Input{
			Transcript: transcript,
			Caption:    asset.Caption,
			Frames:     frames,
			Vision:     vision,
		})
		return err
	}); err != nil {
		return nil, err
	}
	return mentions, nil
}

// stage times fn and logs its start and outcome.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, p.logger)
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	start := time.Now()
	err := fn(stageCtx)
	elapsed := time.Since(start)
	metrics.RecordStage(name, elapsed)

	if err != nil {
		attrs := []logging.Attr{
			logging.Duration("duration", elapsed),
			logging.Error(err),
		}
		if services.IsDomain(err) {
			logging.WarnWithContext(logger, "stage failed", "stage_failed", attrs...)
		} else {
			logging.ErrorWithContext(logger, "stage failed", "stage_failed", attrs...)
		}
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", elapsed),
	)
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case services.IsDomain(err):
		return metrics.OutcomeDomainError
	default:
		return metrics.OutcomeError
	}
}
