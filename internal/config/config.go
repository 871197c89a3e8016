package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and credential file locations.
type Paths struct {
	VideoDir     string `toml:"video_dir"`
	TempDir      string `toml:"temp_dir"`
	LogDir       string `toml:"log_dir"`
	DatabasePath string `toml:"database_path"`
	CookiesFile  string `toml:"cookies_file"`
}

// Store selects the watch-list backend.
type Store struct {
	Driver      string `toml:"driver"`
	PostgresDSN string `toml:"postgres_dsn"`
}

// Server contains HTTP API settings.
type Server struct {
	Bind                   string   `toml:"bind"`
	APIToken               string   `toml:"api_token"`
	CORSOrigins            []string `toml:"cors_origins"`
	PipelineRatePerMinute  int      `toml:"pipeline_rate_per_minute"`
	PipelineTimeoutSeconds int      `toml:"pipeline_timeout_seconds"`
}

// OMDb contains configuration for the Open Movie Database API.
type OMDb struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// OpenAI contains connection and model settings for the OpenAI-compatible
// chat-completions and transcription endpoints.
type OpenAI struct {
	APIKey             string `toml:"api_key"`
	BaseURL            string `toml:"base_url"`
	VisionModel        string `toml:"vision_model"`
	SearchModel        string `toml:"search_model"`
	SearchContextSize  string `toml:"search_context_size"`
	TextModel          string `toml:"text_model"`
	TranscriptionModel string `toml:"transcription_model"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
}

// Reel contains reel pipeline tuning and external tool names.
type Reel struct {
	FrameCount          int    `toml:"frame_count"`
	MaxMatchesPerTitle  int    `toml:"max_matches_per_title"`
	RequireCookies      bool   `toml:"require_cookies"`
	PageCaptionFallback bool   `toml:"page_caption_fallback"`
	YtDlpBinary         string `toml:"ytdlp_binary"`
	FFmpegBinary        string `toml:"ffmpeg_binary"`
	FFprobeBinary       string `toml:"ffprobe_binary"`
	MinFreeBytes        uint64 `toml:"min_free_bytes"`
	StaleTempHours      int    `toml:"stale_temp_hours"`
}

// Notifications configures ntfy pushes for reel runs.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for moviepicker.
//
// Configuration sections by subsystem:
//   - Paths: video/temp directories, database file, cookie file
//   - Store: watch-list backend (sqlite or postgres)
//   - Server: HTTP bind address, auth token, CORS and rate limits
//   - OMDb: movie metadata lookups
//   - OpenAI: extraction, description, recommendation and transcription models
//   - Reel: reel pipeline settings and tool binaries
//   - Notifications: optional ntfy topic
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Store         Store         `toml:"store"`
	Server        Server        `toml:"server"`
	OMDb          OMDb          `toml:"omdb"`
	OpenAI        OpenAI        `toml:"openai"`
	Reel          Reel          `toml:"reel"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("moviepicker.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the video, temp, log and database directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.VideoDir, c.Paths.TempDir, c.Paths.LogDir}
	if c.Store.Driver == StoreSQLite {
		dirs = append(dirs, filepath.Dir(c.Paths.DatabasePath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PipelineTimeout returns the per-run deadline applied by the HTTP layer.
func (c *Config) PipelineTimeout() time.Duration {
	return time.Duration(c.Server.PipelineTimeoutSeconds) * time.Second
}

// StaleTempAge returns the age after which leftover run directories are removed.
func (c *Config) StaleTempAge() time.Duration {
	return time.Duration(c.Reel.StaleTempHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
