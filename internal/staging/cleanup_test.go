package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"moviepicker/internal/logging"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func makeDir(t *testing.T, parent, name string, age time.Duration) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "audio.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(dir, stamp, stamp); err != nil {
		t.Fatalf("set time: %v", err)
	}
	return dir
}

func TestCleanStaleRemovesOldRunDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	oldDir := makeDir(t, tmpDir, uuid.NewString(), 2*time.Hour)
	recentDir := makeDir(t, tmpDir, uuid.NewString(), 0)
	foreignDir := makeDir(t, tmpDir, "keep-me", 2*time.Hour)

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("expected only %s removed, got %v", oldDir, result.Removed)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != foreignDir {
		t.Fatalf("expected foreign dir skipped, got %v", result.Skipped)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old directory should have been removed")
	}
	for _, dir := range []string{recentDir, foreignDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("%s should still exist", dir)
		}
	}
}

func TestCleanStaleIgnoresFiles(t *testing.T) {
	tmpDir := t.TempDir()
	oldFile := filepath.Join(tmpDir, uuid.NewString())
	if err := os.WriteFile(oldFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())
	if len(result.Removed) != 0 {
		t.Errorf("expected no removals for files, got %d", len(result.Removed))
	}
	if _, err := os.Stat(oldFile); err != nil {
		t.Error("file should still exist")
	}
}

func TestCleanStaleStopsOnCancelledContext(t *testing.T) {
	tmpDir := t.TempDir()
	dir := makeDir(t, tmpDir, uuid.NewString(), 2*time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := CleanStale(ctx, tmpDir, time.Hour, nil)
	if len(result.Errors) != 1 || len(result.Removed) != 0 {
		t.Fatalf("expected cancellation error only, got %+v", result)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatal("directory should survive a cancelled cleanup")
	}
}

func TestIsRunDir(t *testing.T) {
	if !IsRunDir(uuid.NewString()) {
		t.Fatal("expected uuid to be a run dir")
	}
	if IsRunDir("videos") {
		t.Fatal("expected plain name to be rejected")
	}
}
