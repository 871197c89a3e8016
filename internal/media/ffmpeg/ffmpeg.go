package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"moviepicker/internal/media"
	"moviepicker/internal/services"
)

// DurationProber reports the length of a media file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Transcoder derives audio tracks and snapshot frames from a video.
type Transcoder struct {
	binary string
	prober DurationProber
	run    media.CommandRunner
}

// New constructs a transcoder. An empty binary means "ffmpeg" from PATH and
// a nil runner means media.ExecRunner.
func New(binary string, prober DurationProber, run media.CommandRunner) *Transcoder {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if run == nil {
		run = media.ExecRunner
	}
	return &Transcoder{binary: binary, prober: prober, run: run}
}

// ExtractAudio writes a mono 16 kHz 64 kbps MP3 named after the video stem
// into outDir and returns its path.
func (t *Transcoder) ExtractAudio(ctx context.Context, videoPath, outDir string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(outDir, stem+".mp3")
	_, err := t.run(ctx, t.binary,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-ab", "64k",
		"-ar", "16000",
		"-ac", "1",
		audioPath,
	)
	if err != nil {
		_ = os.Remove(audioPath)
		return "", services.Wrap(services.ErrTranscode, "transcode", "extract audio", "audio extraction failed", err)
	}
	return audioPath, nil
}

// ExtractFrames writes n JPEG snapshots evenly spaced across the video into
// outDir. On failure, frames already written are removed and none returned.
func (t *Transcoder) ExtractFrames(ctx context.Context, videoPath, outDir string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	if t.prober == nil {
		return nil, services.Wrap(services.ErrTranscode, "transcode", "extract frames", "no duration prober configured", nil)
	}
	duration, err := t.prober.Duration(ctx, videoPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscode, "transcode", "probe duration", "could not read video duration", err)
	}

	frames := make([]string, 0, n)
	for i, ts := range FrameTimestamps(duration, n) {
		framePath := filepath.Join(outDir, fmt.Sprintf("frame_%d.jpg", i))
		_, runErr := t.run(ctx, t.binary,
			"-y",
			"-ss", strconv.FormatFloat(ts, 'f', 3, 64),
			"-i", videoPath,
			"-vframes", "1",
			"-q:v", "2",
			framePath,
		)
		if runErr == nil {
			if _, statErr := os.Stat(framePath); statErr != nil {
				runErr = fmt.Errorf("frame not written: %w", statErr)
			}
		}
		if runErr != nil {
			removeAll(append(frames, framePath))
			return nil, services.Wrap(services.ErrTranscode, "transcode", "extract frames", fmt.Sprintf("frame %d failed", i), runErr)
		}
		frames = append(frames, framePath)
	}
	return frames, nil
}

// FrameTimestamps places n points strictly inside (0, d): t_i = d*(i+1)/(n+1).
func FrameTimestamps(d float64, n int) []float64 {
	if n <= 0 || d <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = d * float64(i+1) / float64(n+1)
	}
	return out
}

func removeAll(paths []string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}
