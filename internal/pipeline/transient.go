package pipeline

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"moviepicker/internal/logging"
	"moviepicker/internal/metrics"
)

// transientSet tracks files and directories owned by one run.
type transientSet struct {
	paths  []string
	logger *slog.Logger
}

func (s *transientSet) add(paths ...string) {
	for _, p := range paths {
		if p != "" {
			s.paths = append(s.paths, p)
		}
	}
}

// cleanup removes every registered path, newest first. Failures are logged
// and counted but never returned.
func (s *transientSet) cleanup() {
	for i := len(s.paths) - 1; i >= 0; i-- {
		path := s.paths[i]
		if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			metrics.TransientCleanupErrors.Inc()
			logging.WarnWithContext(s.logger, "failed to remove transient file", "transient_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "temporary files left on disk until the next stale sweep"),
			)
		}
	}
	s.paths = nil
}
