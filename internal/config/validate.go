package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		return errors.New("paths.source_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/stacks/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'stacks config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateOrganize() error {
	return ensurePositiveMap(map[string]int{
		"organize.request_delay": c.Organize.RequestDelay,
		"organize.max_retries":   c.Organize.MaxRetries,
		"organize.retry_backoff": c.Organize.RetryBackoff,
	})
}

func (c *Config) validateIngest() error {
	if !c.Ingest.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Ingest.WatchDir) == "" {
		return errors.New("ingest.watch_dir must be set when ingest.enabled is true")
	}
	if strings.TrimSpace(c.Ingest.DebridBaseURL) == "" {
		return errors.New("ingest.debrid_base_url must be set when ingest.enabled is true")
	}
	if strings.TrimSpace(c.Ingest.DebridToken) == "" {
		return errors.New("ingest.debrid_token must be set when ingest.enabled is true (or set DEBRID_API_TOKEN)")
	}
	return ensurePositiveMap(map[string]int{
		"ingest.poll_interval": c.Ingest.PollInterval,
		"ingest.max_attempts":  c.Ingest.MaxAttempts,
		"ingest.retry_delay":   c.Ingest.RetryDelay,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
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
