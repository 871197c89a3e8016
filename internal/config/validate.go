package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are checked
// separately by RequireOMDb and at the point each pipeline stage runs.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateOMDb(); err != nil {
		return err
	}
	if err := c.validateOpenAI(); err != nil {
		return err
	}
	if err := c.validateReel(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeoutSeconds < 0 {
		return errors.New("notifications.request_timeout_seconds must be >= 0")
	}
	return nil
}

// RequireOMDb reports a descriptive error when no OMDb API key is configured.
func (c *Config) RequireOMDb() error {
	if strings.TrimSpace(c.OMDb.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("omdb.api_key is required. Set OMDB_API_KEY env var or edit %s (create with 'moviepicker config init')", defaultPath)
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case StoreSQLite:
		if strings.TrimSpace(c.Paths.DatabasePath) == "" {
			return errors.New("paths.database_path must be set when store.driver is sqlite")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn must be set when store.driver is postgres (or set DATABASE_URL)")
		}
	default:
		return fmt.Errorf("store.driver: unsupported value %q (expected sqlite or postgres)", c.Store.Driver)
	}
	return nil
}

func (c *Config) validateServer() error {
	if err := ensurePositiveMap(map[string]int{
		"server.pipeline_rate_per_minute": c.Server.PipelineRatePerMinute,
		"server.pipeline_timeout_seconds": c.Server.PipelineTimeoutSeconds,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOMDb() error {
	if c.OMDb.RequestsPerSecond < 0 {
		return errors.New("omdb.requests_per_second must be >= 0 (0 disables throttling)")
	}
	if c.OMDb.TimeoutSeconds <= 0 {
		return errors.New("omdb.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	if c.OpenAI.TimeoutSeconds <= 0 {
		return errors.New("openai.timeout_seconds must be positive")
	}
	switch c.OpenAI.SearchContextSize {
	case "", "low", "medium", "high":
	default:
		return fmt.Errorf("openai.search_context_size: unsupported value %q (expected low, medium, high or empty)", c.OpenAI.SearchContextSize)
	}
	return nil
}

func (c *Config) validateReel() error {
	if err := ensurePositiveMap(map[string]int{
		"reel.frame_count":           c.Reel.FrameCount,
		"reel.max_matches_per_title": c.Reel.MaxMatchesPerTitle,
		"reel.stale_temp_hours":      c.Reel.StaleTempHours,
	}); err != nil {
		return err
	}
	if c.Reel.FrameCount > 10 {
		return errors.New("reel.frame_count must be at most 10")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
