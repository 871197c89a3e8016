package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"moviepicker/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "omdb-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("INSTAGRAM_COOKIES_PATH", "")
	t.Setenv("MOVIEPICKER_API_TOKEN", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantVideo := filepath.Join(tempHome, ".local", "share", "moviepicker", "videos")
	if cfg.Paths.VideoDir != wantVideo {
		t.Fatalf("unexpected video dir: got %q want %q", cfg.Paths.VideoDir, wantVideo)
	}
	if cfg.Paths.TempDir != filepath.Join(tempHome, ".cache", "moviepicker", "tmp") {
		t.Fatalf("unexpected temp dir: %q", cfg.Paths.TempDir)
	}
	if cfg.Server.Bind != "127.0.0.1:8000" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if cfg.OMDb.APIKey != "omdb-key" {
		t.Fatalf("expected OMDb key from env, got %q", cfg.OMDb.APIKey)
	}
	if cfg.OpenAI.APIKey != "openai-key" {
		t.Fatalf("expected OpenAI key from env, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Store.Driver != config.StoreSQLite {
		t.Fatalf("expected sqlite store by default, got %q", cfg.Store.Driver)
	}
	if cfg.Reel.FrameCount != 3 || cfg.Reel.MaxMatchesPerTitle != 3 {
		t.Fatalf("unexpected reel defaults: %+v", cfg.Reel)
	}
	if !cfg.Reel.RequireCookies {
		t.Fatal("expected cookies to be required by default")
	}
	if cfg.OpenAI.SearchContextSize != "low" {
		t.Fatalf("unexpected search context size: %q", cfg.OpenAI.SearchContextSize)
	}
	if cfg.PipelineTimeout() != 10*time.Minute {
		t.Fatalf("unexpected pipeline timeout: %v", cfg.PipelineTimeout())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.VideoDir, cfg.Paths.TempDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.DatabasePath)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "")
	t.Setenv("INSTAGRAM_COOKIES_PATH", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "moviepicker.toml")

	type payload struct {
		Paths struct {
			VideoDir    string `toml:"video_dir"`
			CookiesFile string `toml:"cookies_file"`
		} `toml:"paths"`
		OMDb struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"omdb"`
		Reel struct {
			FrameCount     int  `toml:"frame_count"`
			RequireCookies bool `toml:"require_cookies"`
		} `toml:"reel"`
	}
	custom := payload{}
	custom.Paths.VideoDir = filepath.Join(tempDir, "videos")
	custom.Paths.CookiesFile = filepath.Join(tempDir, "cookies.txt")
	custom.OMDb.APIKey = "abc123"
	custom.OMDb.BaseURL = "https://example.com/omdb/"
	custom.Reel.FrameCount = 5
	custom.Reel.RequireCookies = false
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.OMDb.APIKey != "abc123" {
		t.Fatalf("expected OMDb key from file, got %q", cfg.OMDb.APIKey)
	}
	if cfg.OMDb.BaseURL != "https://example.com/omdb/" {
		t.Fatalf("expected OMDb base url override, got %q", cfg.OMDb.BaseURL)
	}
	if cfg.Paths.VideoDir != filepath.Join(tempDir, "videos") {
		t.Fatalf("unexpected video dir %q", cfg.Paths.VideoDir)
	}
	if cfg.Reel.FrameCount != 5 {
		t.Fatalf("expected frame count 5, got %d", cfg.Reel.FrameCount)
	}
	if cfg.Reel.RequireCookies {
		t.Fatal("expected require_cookies override to be honoured")
	}
	if cfg.Reel.MaxMatchesPerTitle != 3 {
		t.Fatalf("expected default max matches, got %d", cfg.Reel.MaxMatchesPerTitle)
	}
}

func TestCookiesEnvOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "moviepicker.toml")
	body := "[paths]\ncookies_file = \"" + filepath.ToSlash(filepath.Join(tempDir, "file-cookies.txt")) + "\"\n\n[omdb]\napi_key = \"file-omdb\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	envCookies := filepath.Join(tempDir, "env-cookies.txt")
	t.Setenv("INSTAGRAM_COOKIES_PATH", envCookies)
	t.Setenv("OMDB_API_KEY", "env-omdb")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.CookiesFile != envCookies {
		t.Errorf("expected cookies path from env, got %q", cfg.Paths.CookiesFile)
	}
	if cfg.OMDb.APIKey != "file-omdb" {
		t.Errorf("expected file OMDb key to win over env fallback, got %q", cfg.OMDb.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "OMDB_API_KEY") {
		t.Fatalf("sample config missing OMDb hint: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.VideoDir, "moviepicker") {
		t.Fatalf("expected video dir to contain moviepicker, got %q", cfg.Paths.VideoDir)
	}
	if cfg.Reel.FrameCount != 3 {
		t.Fatalf("expected sample frame count 3, got %d", cfg.Reel.FrameCount)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown store driver", func(c *config.Config) { c.Store.Driver = "mysql" }},
		{"postgres without dsn", func(c *config.Config) { c.Store.Driver = config.StorePostgres }},
		{"negative frame count", func(c *config.Config) { c.Reel.FrameCount = -1 }},
		{"too many frames", func(c *config.Config) { c.Reel.FrameCount = 11 }},
		{"zero matches", func(c *config.Config) { c.Reel.MaxMatchesPerTitle = 0 }},
		{"bad search context", func(c *config.Config) { c.OpenAI.SearchContextSize = "huge" }},
		{"negative omdb rate", func(c *config.Config) { c.OMDb.RequestsPerSecond = -1 }},
		{"zero pipeline timeout", func(c *config.Config) { c.Server.PipelineTimeoutSeconds = 0 }},
		{"negative notify timeout", func(c *config.Config) { c.Notifications.RequestTimeoutSeconds = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
}

func TestRequireOMDbMentionsEnvVar(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	err := cfg.RequireOMDb()
	if err == nil || !strings.Contains(err.Error(), "OMDB_API_KEY") {
		t.Fatalf("expected OMDB_API_KEY hint, got %v", err)
	}
	cfg.OMDb.APIKey = "k"
	if err := cfg.RequireOMDb(); err != nil {
		t.Fatalf("unexpected error with key set: %v", err)
	}
}
