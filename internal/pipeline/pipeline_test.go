package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"moviepicker/internal/extraction"
	"moviepicker/internal/logging"
	"moviepicker/internal/pipeline"
	"moviepicker/internal/reel"
	"moviepicker/internal/resolver"
	"moviepicker/internal/services"
	"moviepicker/internal/testsupport"
	"moviepicker/internal/watchlist"
)

const reelURL = "https://www.instagram.com/reel/C0dE123/"

type stubFetcher struct {
	t        testing.TB
	videoDir string
	calls    int
}

func (s *stubFetcher) Fetch(_ context.Context, ref reel.Reference) (reel.Asset, error) {
	s.calls++
	path := testsupport.WriteMedia(s.t, filepath.Join(s.videoDir, ref.Shortcode+".mp4"))
	return reel.Asset{ID: ref.Shortcode, VideoPath: path, Caption: "Лучшие фильмы"}, nil
}

type stubTranscoder struct {
	t           testing.TB
	audioErr    error
	framesErr   error
	audioCalls  int
	framesCalls int
	written     []string
}

func (s *stubTranscoder) ExtractAudio(_ context.Context, _ string, outDir string) (string, error) {
	s.audioCalls++
	path := testsupport.WriteMedia(s.t, filepath.Join(outDir, "audio.mp3"))
	s.written = append(s.written, path)
	if s.audioErr != nil {
		return "", s.audioErr
	}
	return path, nil
}

func (s *stubTranscoder) ExtractFrames(_ context.Context, _ string, outDir string, n int) ([]string, error) {
	s.framesCalls++
	if s.framesErr != nil {
		return nil, s.framesErr
	}
	frames := make([]string, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, testsupport.WriteMedia(s.t, filepath.Join(outDir, "frame_"+string(rune('0'+i))+".jpg")))
	}
	s.written = append(s.written, frames...)
	return frames, nil
}

type stubTranscriber struct {
	calls int
	err   error
}

func (s *stubTranscriber) Transcribe(_ context.Context, audioPath string) (string, error) {
	s.calls++
	if _, err := os.Stat(audioPath); err != nil {
		return "", err
	}
	return "Сегодня три фильма", s.err
}

type stubExtractor struct {
	mentions []extraction.Mention
	inputs   []extraction.Input
}

func (s *stubExtractor) Extract(_ context.Context, in extraction.Input) ([]extraction.Mention, error) {
	s.inputs = append(s.inputs, in)
	return s.mentions, nil
}

type stubResolver struct {
	calls []string
}

func (s *stubResolver) Resolve(_ context.Context, m extraction.Mention, seen resolver.Seen) ([]resolver.Match, error) {
	s.calls = append(s.calls, m.TitleEN)
	id := "tt-" + m.TitleEN
	if seen.Has(id) {
		return []resolver.Match{}, nil
	}
	seen[id] = struct{}{}
	return []resolver.Match{{IMDbID: id, Title: m.TitleEN}}, nil
}

type stubPreflight struct{ err error }

func (s stubPreflight) Check(context.Context) error { return s.err }

type harness struct {
	tempDir     string
	fetcher     *stubFetcher
	transcoder  *stubTranscoder
	transcriber *stubTranscriber
	extractor   *stubExtractor
	resolver    *stubResolver
	store       *watchlist.SQLiteStore
	pipeline    *pipeline.Pipeline
}

func newHarness(t *testing.T, mutate func(*harness, *pipeline.Dependencies)) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	h := &harness{
		tempDir:     cfg.Paths.TempDir,
		fetcher:     &stubFetcher{t: t, videoDir: cfg.Paths.VideoDir},
		transcoder:  &stubTranscoder{t: t},
		transcriber: &stubTranscriber{},
		extractor: &stubExtractor{mentions: []extraction.Mention{
			{TitleRU: "Начало", TitleEN: "Inception", Description: "Сны"},
			{TitleEN: "Heat"},
			{TitleRU: "Начало", TitleEN: "Inception"},
		}},
		resolver: &stubResolver{},
		store:    testsupport.MustOpenStore(t, cfg),
	}
	deps := pipeline.Dependencies{
		Fetcher:     h.fetcher,
		Transcoder:  h.transcoder,
		Transcriber: h.transcriber,
		Extractor:   h.extractor,
		Resolver:    h.resolver,
		Store:       h.store,
	}
	if mutate != nil {
		mutate(h, &deps)
	}
	h.pipeline = pipeline.New(pipeline.Config{TempDir: cfg.Paths.TempDir, FrameCount: 3}, deps, logging.NewNop())
	return h
}

func (h *harness) assertNoTransientFiles(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.tempDir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected temp dir to be empty, found %d entries", len(entries))
	}
	for _, path := range h.transcoder.written {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be removed", path)
		}
	}
}

func TestSearchReturnsMatchesInMentionOrder(t *testing.T) {
	h := newHarness(t, nil)
	matches, err := h.pipeline.Search(context.Background(), reelURL, true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 || matches[0].IMDbID != "tt-Inception" || matches[1].IMDbID != "tt-Heat" {
		t.Fatalf("unexpected matches %+v", matches)
	}
	if len(h.resolver.calls) != 3 {
		t.Fatalf("expected every mention resolved, got %v", h.resolver.calls)
	}
	in := h.extractor.inputs[0]
	if !in.Vision || len(in.Frames) != 3 || in.Caption != "Лучшие фильмы" || in.Transcript != "Сегодня три фильма" {
		t.Fatalf("unexpected extractor input %+v", in)
	}
	h.assertNoTransientFiles(t)
	if _, err := os.Stat(filepath.Join(h.fetcher.videoDir, "C0dE123.mp4")); err != nil {
		t.Fatalf("video should be kept: %v", err)
	}
}

func TestSearchWithoutVisionSkipsFrames(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.pipeline.Search(context.Background(), reelURL, false); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if h.transcoder.framesCalls != 0 || len(h.extractor.inputs[0].Frames) != 0 {
		t.Fatal("expected no frame extraction without vision")
	}
}

func TestTranscoderFailureCleansUpAndKeepsVideo(t *testing.T) {
	h := newHarness(t, func(h *harness, _ *pipeline.Dependencies) {
		h.transcoder.audioErr = services.Wrap(services.ErrTranscode, "audio", "ffmpeg", "exit status 1", nil)
	})

	_, err := h.pipeline.Search(context.Background(), reelURL, false)
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected ErrTranscode, got %v", err)
	}
	if services.HTTPStatus(err) != 400 {
		t.Fatalf("expected domain error status 400, got %d", services.HTTPStatus(err))
	}
	if h.transcriber.calls != 0 || len(h.extractor.inputs) != 0 {
		t.Fatal("later stages must not run after a transcoder failure")
	}
	h.assertNoTransientFiles(t)
	if _, err := os.Stat(filepath.Join(h.fetcher.videoDir, "C0dE123.mp4")); err != nil {
		t.Fatalf("video should be kept: %v", err)
	}
}

func TestFrameFailureRemovesAudio(t *testing.T) {
	h := newHarness(t, func(h *harness, _ *pipeline.Dependencies) {
		h.transcoder.framesErr = services.Wrap(services.ErrTranscode, "frames", "ffprobe", "bad duration", nil)
	})
	if _, err := h.pipeline.Import(context.Background(), reelURL, true); !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected ErrTranscode, got %v", err)
	}
	if len(h.transcoder.written) != 1 {
		t.Fatalf("expected audio to have been written, got %v", h.transcoder.written)
	}
	h.assertNoTransientFiles(t)
}

func TestInvalidURLInvokesNoCollaborator(t *testing.T) {
	h := newHarness(t, nil)
	for _, raw := range []string{"", "https://www.instagram.com/p/ABC/", "https://example.com/reel/ABC/"} {
		_, err := h.pipeline.Search(context.Background(), raw, true)
		if !errors.Is(err, services.ErrInvalidInput) {
			t.Fatalf("%q: expected ErrInvalidInput, got %v", raw, err)
		}
		if services.HTTPStatus(err) != 400 {
			t.Fatalf("%q: expected status 400, got %d", raw, services.HTTPStatus(err))
		}
		if _, err := h.pipeline.Import(context.Background(), raw, false); !errors.Is(err, services.ErrInvalidInput) {
			t.Fatalf("%q: expected ErrInvalidInput from import, got %v", raw, err)
		}
	}
	if h.fetcher.calls != 0 || h.transcoder.audioCalls != 0 || h.transcriber.calls != 0 ||
		len(h.extractor.inputs) != 0 || len(h.resolver.calls) != 0 {
		t.Fatal("no collaborator may be invoked for an invalid URL")
	}
	if _, err := os.Stat(h.tempDir); !os.IsNotExist(err) {
		t.Fatal("no run directory may be created for an invalid URL")
	}
}

func TestImportTwiceCreatesOneEntryPerMention(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first, err := h.pipeline.Import(ctx, reelURL, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 created entries, got %+v", first)
	}
	if first[0].Title != "Начало" || first[0].OriginalTitle != "Inception" || first[0].Description != "Сны" {
		t.Fatalf("unexpected first entry %+v", first[0])
	}
	if first[1].Title != "Heat" || first[1].OriginalTitle != "" {
		t.Fatalf("unexpected second entry %+v", first[1])
	}
	for _, m := range first {
		if m.Source != watchlist.SourceInstagram || !m.IMDbID.IsSynthetic() || len(m.IMDbID.String()) != len("insta_")+16 {
			t.Fatalf("unexpected entry identity %+v", m)
		}
	}

	second, err := h.pipeline.Import(ctx, reelURL, false)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected no new entries, got %+v", second)
	}
	all, err := h.store.List(ctx, watchlist.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 stored entries, got %d", len(all))
	}
	h.assertNoTransientFiles(t)
}

func TestPreflightFailureStopsBeforeFetch(t *testing.T) {
	h := newHarness(t, func(_ *harness, deps *pipeline.Dependencies) {
		deps.Preflight = stubPreflight{err: services.Wrap(services.ErrConfiguration, "preflight", "check", "low disk", nil)}
	})
	_, err := h.pipeline.Search(context.Background(), reelURL, false)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if services.HTTPStatus(err) != 500 {
		t.Fatalf("expected status 500, got %d", services.HTTPStatus(err))
	}
	if h.fetcher.calls != 0 {
		t.Fatal("fetch must not run after a failed preflight")
	}
}

func TestTranscriptionFailureIsDomainError(t *testing.T) {
	h := newHarness(t, func(h *harness, _ *pipeline.Dependencies) {
		h.transcriber.err = services.Wrap(services.ErrTranscription, "transcribe", "", "model error", nil)
	})
	_, err := h.pipeline.Search(context.Background(), reelURL, false)
	if !services.IsDomain(err) {
		t.Fatalf("expected domain error, got %v", err)
	}
	h.assertNoTransientFiles(t)
}

type recordingNotifier struct {
	imported [][]string
	failed   []error
	err      error
}

func (r *recordingNotifier) NotifyImportCompleted(ctx context.Context, _ string, titles []string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	r.imported = append(r.imported, titles)
	return r.err
}

func (r *recordingNotifier) NotifyRunFailed(_ context.Context, _, _ string, err error) error {
	r.failed = append(r.failed, err)
	return r.err
}

func TestImportNotifiesOnlyWhenEntriesCreated(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newHarness(t, func(_ *harness, deps *pipeline.Dependencies) {
		deps.Notifier = notifier
	})
	ctx := context.Background()

	if _, err := h.pipeline.Import(ctx, reelURL, false); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := h.pipeline.Import(ctx, reelURL, false); err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if len(notifier.imported) != 1 {
		t.Fatalf("expected one import notification, got %d", len(notifier.imported))
	}
	if got := notifier.imported[0]; len(got) != 2 || got[0] != "Начало" || got[1] != "Heat" {
		t.Fatalf("unexpected notified titles %v", got)
	}
	if len(notifier.failed) != 0 {
		t.Fatalf("unexpected failure notifications %v", notifier.failed)
	}
}

func TestNotifierFailureDoesNotFailImport(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("ntfy down")}
	h := newHarness(t, func(_ *harness, deps *pipeline.Dependencies) {
		deps.Notifier = notifier
	})
	created, err := h.pipeline.Import(context.Background(), reelURL, false)
	if err != nil || len(created) != 2 {
		t.Fatalf("expected import to succeed, got %d entries err=%v", len(created), err)
	}
}

func TestRunFailureNotifiesOnlyForInternalErrors(t *testing.T) {
	notifier := &recordingNotifier{}
	preflightErr := services.Wrap(services.ErrConfiguration, "preflight", "check", "low disk", nil)
	h := newHarness(t, func(h *harness, deps *pipeline.Dependencies) {
		deps.Notifier = notifier
		deps.Preflight = stubPreflight{err: preflightErr}
	})
	if _, err := h.pipeline.Search(context.Background(), reelURL, false); err == nil {
		t.Fatal("expected preflight failure")
	}
	if _, err := h.pipeline.Search(context.Background(), "https://example.com/", false); err == nil {
		t.Fatal("expected invalid URL failure")
	}
	if len(notifier.failed) != 1 || !errors.Is(notifier.failed[0], services.ErrConfiguration) {
		t.Fatalf("expected a single notification for the internal failure, got %v", notifier.failed)
	}
}
