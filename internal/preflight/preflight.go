package preflight

import (
	"context"
	"fmt"
	"strings"

	"moviepicker/internal/config"
	"moviepicker/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks for the given config.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Video directory", cfg.Paths.VideoDir),
		CheckFreeSpace("Video directory space", cfg.Paths.VideoDir, cfg.Reel.MinFreeBytes),
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckFreeSpace("Temp directory space", cfg.Paths.TempDir, cfg.Reel.MinFreeBytes),
	}
}

// Checker runs RunAll before each pipeline run.
type Checker struct {
	cfg *config.Config
}

// NewChecker binds a checker to cfg.
func NewChecker(cfg *config.Config) *Checker {
	return &Checker{cfg: cfg}
}

// Check returns a configuration error naming every failed check.
func (c *Checker) Check(ctx context.Context) error {
	var failed []string
	for _, result := range RunAll(ctx, c.cfg) {
		if !result.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(failed, "; "), nil)
}
