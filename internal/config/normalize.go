package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTMDB(); err != nil {
		return err
	}
	if err := c.normalizeOMDB(); err != nil {
		return err
	}
	c.normalizeOrganize()
	if err := c.normalizeIngest(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() error {
	if value, ok := os.LookupEnv("TMDB_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.TMDB.APIKey = strings.TrimSpace(value)
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	return nil
}

func (c *Config) normalizeOMDB() error {
	if value, ok := os.LookupEnv("OMDB_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.OMDB.APIKey = strings.TrimSpace(value)
	}
	c.OMDB.BaseURL = strings.TrimSpace(c.OMDB.BaseURL)
	if c.OMDB.BaseURL == "" {
		c.OMDB.BaseURL = defaultOMDBBaseURL
	}
	return nil
}

func (c *Config) normalizeOrganize() {
	if c.Organize.RequestDelay <= 0 {
		c.Organize.RequestDelay = defaultRequestDelay
	}
	if c.Organize.RequestJitter < 0 {
		c.Organize.RequestJitter = defaultRequestJitter
	}
	if c.Organize.MaxRetries <= 0 {
		c.Organize.MaxRetries = defaultMaxRetries
	}
	if c.Organize.RetryBackoff <= 0 {
		c.Organize.RetryBackoff = defaultRetryBackoff
	}
}

func (c *Config) normalizeIngest() error {
	var err error
	if strings.TrimSpace(c.Ingest.WatchDir) == "" {
		c.Ingest.WatchDir = defaultWatchDir
	}
	if c.Ingest.WatchDir, err = expandPath(c.Ingest.WatchDir); err != nil {
		return fmt.Errorf("ingest.watch_dir: %w", err)
	}
	if strings.TrimSpace(c.Ingest.QuarantineDir) == "" {
		c.Ingest.QuarantineDir = defaultQuarantineDir
	}
	if c.Ingest.QuarantineDir, err = expandPath(c.Ingest.QuarantineDir); err != nil {
		return fmt.Errorf("ingest.quarantine_dir: %w", err)
	}
	c.Ingest.DebridBaseURL = strings.TrimSpace(c.Ingest.DebridBaseURL)
	c.Ingest.DebridToken = strings.TrimSpace(c.Ingest.DebridToken)
	if value, ok := os.LookupEnv("DEBRID_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Ingest.DebridToken = strings.TrimSpace(value)
	}
	if c.Ingest.PollInterval <= 0 {
		c.Ingest.PollInterval = defaultPollInterval
	}
	if c.Ingest.MinFileSizeMB < 0 {
		c.Ingest.MinFileSizeMB = defaultMinFileSizeMB
	}
	if c.Ingest.MaxAttempts <= 0 {
		c.Ingest.MaxAttempts = defaultIngestAttempts
	}
	if c.Ingest.RetryDelay <= 0 {
		c.Ingest.RetryDelay = defaultIngestRetry
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
