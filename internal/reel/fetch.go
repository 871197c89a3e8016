package reel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofrs/flock"

	"moviepicker/internal/logging"
	"moviepicker/internal/media"
	"moviepicker/internal/services"
)

const lockRetryDelay = 250 * time.Millisecond

// Asset is a downloaded reel. The video is durable; the caption may be empty.
type Asset struct {
	ID        string
	VideoPath string
	Caption   string
}

// FetcherConfig controls how reels are downloaded.
type FetcherConfig struct {
	VideoDir       string
	CookiesFile    string
	RequireCookies bool
	YtDlpBinary    string
}

// CaptionSource fetches a caption from somewhere other than yt-dlp metadata.
type CaptionSource interface {
	Caption(ctx context.Context, ref Reference) (string, error)
}

// Fetcher downloads reels with yt-dlp.
type Fetcher struct {
	cfg      FetcherConfig
	run      media.CommandRunner
	fallback CaptionSource
	logger   *slog.Logger
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithCommandRunner replaces the yt-dlp runner.
func WithCommandRunner(run media.CommandRunner) FetcherOption {
	return func(f *Fetcher) {
		if run != nil {
			f.run = run
		}
	}
}

// WithCaptionFallback consults source when yt-dlp yields no caption.
func WithCaptionFallback(source CaptionSource) FetcherOption {
	return func(f *Fetcher) {
		f.fallback = source
	}
}

// NewFetcher constructs a fetcher.
func NewFetcher(cfg FetcherConfig, logger *slog.Logger, opts ...FetcherOption) *Fetcher {
	if strings.TrimSpace(cfg.YtDlpBinary) == "" {
		cfg.YtDlpBinary = "yt-dlp"
	}
	f := &Fetcher{
		cfg:    cfg,
		run:    media.ExecRunner,
		logger: logging.NewComponentLogger(logger, "reel-fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type infoJSON struct {
	ID          string `json:"id"`
	Ext         string `json:"ext"`
	Description string `json:"description"`
}

// Fetch downloads the reel into the video directory and harvests its caption.
func (f *Fetcher) Fetch(ctx context.Context, ref Reference) (Asset, error) {
	cookies, err := f.cookiesFile()
	if err != nil {
		return Asset{}, err
	}
	if err := os.MkdirAll(f.cfg.VideoDir, 0o755); err != nil {
		return Asset{}, services.Wrap(services.ErrFetch, "fetch", "prepare video dir", f.cfg.VideoDir, err)
	}

	unlock, err := f.lock(ctx, ref.Shortcode)
	if err != nil {
		return Asset{}, err
	}
	defer unlock()

	args := []string{
		"-f", "mp4/best",
		"-o", filepath.Join(f.cfg.VideoDir, "%(id)s.%(ext)s"),
		"--write-info-json",
	}
	if cookies != "" {
		args = append(args, "--cookies", cookies)
	}
	args = append(args, "--no-simulate", "-j", "--no-warnings", "--no-progress", ref.URL)

	f.logger.Debug("downloading reel", logging.String(logging.FieldReel, ref.Shortcode))
	output, err := f.run(ctx, f.cfg.YtDlpBinary, args...)
	if err != nil {
		f.removeSidecar(ref.Shortcode)
		return Asset{}, services.Wrap(services.ErrFetch, "fetch", "yt-dlp", "download failed", err)
	}
	info, err := parseInfo(output)
	if err != nil {
		f.removeSidecar(ref.Shortcode)
		return Asset{}, services.Wrap(services.ErrFetch, "fetch", "yt-dlp", "unreadable metadata", err)
	}
	if info.ID == "" {
		info.ID = ref.Shortcode
	}
	if info.Ext == "" {
		info.Ext = "mp4"
	}

	asset := Asset{
		ID:        info.ID,
		VideoPath: filepath.Join(f.cfg.VideoDir, info.ID+"."+info.Ext),
		Caption:   info.Description,
	}
	sidecarCaption := f.harvestSidecar(info.ID)
	if asset.Caption == "" {
		asset.Caption = sidecarCaption
	}
	if _, err := os.Stat(asset.VideoPath); err != nil {
		return Asset{}, services.Wrap(services.ErrFetch, "fetch", "verify video", "downloaded video not found at "+asset.VideoPath, err)
	}
	if asset.Caption == "" && f.fallback != nil {
		caption, err := f.fallback.Caption(ctx, ref)
		if err != nil {
			logging.WarnWithContext(f.logger, "page caption fallback failed", "caption_fallback_failed",
				logging.String(logging.FieldReel, ref.Shortcode),
				logging.Error(err),
				logging.String(logging.FieldImpact, "extraction runs on transcript only"),
			)
		} else {
			asset.Caption = caption
		}
	}
	f.logger.Info("reel downloaded",
		logging.String(logging.FieldReel, ref.Shortcode),
		logging.String("video_path", asset.VideoPath),
		logging.Bool("has_caption", asset.Caption != ""),
	)
	return asset, nil
}

func (f *Fetcher) cookiesFile() (string, error) {
	path := strings.TrimSpace(f.cfg.CookiesFile)
	if path == "" {
		if f.cfg.RequireCookies {
			return "", services.Wrap(services.ErrMissingCredentials, "fetch", "cookies",
				"cookie file is not configured (set INSTAGRAM_COOKIES_PATH or paths.cookies_file)", nil)
		}
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrMissingCredentials, "fetch", "cookies",
			fmt.Sprintf("cookie file not found at %s; set INSTAGRAM_COOKIES_PATH or place the file there", path), err)
	}
	return path, nil
}

// lock serialises downloads of the same shortcode across runs and processes.
// The lock file is removed on release; a holder that locked a file which was
// unlinked meanwhile retries on the fresh one.
func (f *Fetcher) lock(ctx context.Context, shortcode string) (func(), error) {
	name := shortcode
	if name == "" {
		name = "unknown"
	}
	path := filepath.Join(f.cfg.VideoDir, "."+name+".lock")
	for {
		fileLock := flock.New(path)
		locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return nil, services.Wrap(services.ErrFetch, "fetch", "lock", "could not lock reel download", err)
		}
		if !locked {
			return nil, services.Wrap(services.ErrFetch, "fetch", "lock", "reel download lock not acquired", nil)
		}
		if lockIsCurrent(fileLock) {
			return func() {
				_ = os.Remove(path)
				_ = fileLock.Unlock()
			}, nil
		}
		_ = fileLock.Unlock()
	}
}

func lockIsCurrent(fileLock *flock.Flock) bool {
	held, err := fileLock.Stat()
	if err != nil {
		return false
	}
	onDisk, err := os.Stat(fileLock.Path())
	if err != nil {
		return false
	}
	return os.SameFile(held, onDisk)
}

func (f *Fetcher) sidecarPath(id string) string {
	return filepath.Join(f.cfg.VideoDir, id+".info.json")
}

func (f *Fetcher) removeSidecar(id string) {
	if id == "" {
		return
	}
	path := f.sidecarPath(id)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.logger.Debug("info sidecar not removed", logging.String("path", path), logging.Error(err))
	}
}

// harvestSidecar reads the description from <id>.info.json and always deletes it.
func (f *Fetcher) harvestSidecar(id string) string {
	path := f.sidecarPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.logger.Debug("info sidecar unreadable", logging.String("path", path), logging.Error(err))
		}
		return ""
	}
	defer f.removeSidecar(id)
	var info infoJSON
	if err := json.Unmarshal(data, &info); err != nil {
		return ""
	}
	return info.Description
}

// parseInfo decodes the JSON yt-dlp prints with -j. With playlists it prints
// one object per line; the last one describes the downloaded item.
func parseInfo(output []byte) (infoJSON, error) {
	var info infoJSON
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return infoJSON{}, fmt.Errorf("decode info json: %w", err)
		}
		return info, nil
	}
	return infoJSON{}, errors.New("yt-dlp printed no info json")
}
