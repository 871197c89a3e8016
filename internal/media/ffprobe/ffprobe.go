package ffprobe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"moviepicker/internal/media"
)

// Prober reads container metadata with ffprobe.
type Prober struct {
	binary string
	run    media.CommandRunner
}

// New constructs a prober. An empty binary means "ffprobe" from PATH and a
// nil runner means media.ExecRunner.
func New(binary string, run media.CommandRunner) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if run == nil {
		run = media.ExecRunner
	}
	return &Prober{binary: binary, run: run}
}

// Duration returns the container duration in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, errors.New("ffprobe duration: empty path")
	}
	output, err := p.run(ctx, p.binary,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	return ParseDuration(string(output))
}

// ParseDuration parses the bare number printed by ffprobe.
func ParseDuration(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, errors.New("ffprobe duration: empty output")
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: parse %q: %w", cleaned, err)
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed <= 0 {
		return 0, fmt.Errorf("ffprobe duration: invalid value %q", cleaned)
	}
	return parsed, nil
}
