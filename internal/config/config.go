package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SourceDir  string `toml:"source_dir"`
	LibraryDir string `toml:"library_dir"`
	CacheDir   string `toml:"cache_dir"`
	LogDir     string `toml:"log_dir"`
}

// TMDB contains configuration for the primary metadata provider.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// OMDB contains configuration for the fallback metadata provider.
type OMDB struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Organize contains pacing and retry settings for the organize pipeline.
type Organize struct {
	RequestDelay  int  `toml:"request_delay"`
	RequestJitter int  `toml:"request_jitter"`
	MaxRetries    int  `toml:"max_retries"`
	RetryBackoff  int  `toml:"retry_backoff"`
	DryRun        bool `toml:"dry_run"`
}

// Ingest contains configuration for the torrent drop-folder watcher.
type Ingest struct {
	Enabled       bool   `toml:"enabled"`
	WatchDir      string `toml:"watch_dir"`
	QuarantineDir string `toml:"quarantine_dir"`
	PollInterval  int    `toml:"poll_interval"`
	DebridBaseURL string `toml:"debrid_base_url"`
	DebridToken   string `toml:"debrid_token"`
	MinFileSizeMB int    `toml:"min_file_size_mb"`
	MaxAttempts   int    `toml:"max_attempts"`
	RetryDelay    int    `toml:"retry_delay"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunSummary     bool   `toml:"run_summary"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for stacks.
//
// Configuration sections by subsystem:
//   - Paths: source, library, cache, and log directories
//   - TMDB: primary metadata provider (ranked title search)
//   - OMDB: fallback metadata provider (best-guess title lookup)
//   - Organize: provider pacing, retry bounds, dry-run default
//   - Ingest: torrent drop-folder watcher and debrid upload
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	TMDB          TMDB          `toml:"tmdb"`
	OMDB          OMDB          `toml:"omdb"`
	Organize      Organize      `toml:"organize"`
	Ingest        Ingest        `toml:"ingest"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/stacks/config.toml")
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

	defaultPath, err := expandPath("~/.config/stacks/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stacks.toml")
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

// EnsureDirectories creates required directories for operation. LibraryDir is
// created on a best-effort basis so the CLI can run when external storage is
// temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	if c.Ingest.Enabled {
		for _, dir := range []string{c.Ingest.WatchDir, c.Ingest.QuarantineDir} {
			if strings.TrimSpace(dir) == "" {
				continue
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create ingest directory %q: %w", dir, err)
			}
		}
	}
	return nil
}

// MetadataCachePath returns the location of the persisted metadata cache.
func (c *Config) MetadataCachePath() string {
	return filepath.Join(c.Paths.CacheDir, "metadata_cache.json")
}

// LinkCachePath returns the location of the persisted link cache.
func (c *Config) LinkCachePath() string {
	return filepath.Join(c.Paths.CacheDir, "link_cache.json")
}

// IngestStorePath returns the location of the ingest queue database.
func (c *Config) IngestStorePath() string {
	return filepath.Join(c.Paths.CacheDir, "ingest.db")
}

// LogFilePath returns the shared application log file written by both the
// CLI and the watcher daemon.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "stacks.log")
}

// LockPath returns the location of the cross-process instance lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.CacheDir, "stacks.lock")
}

// DaemonLockPath returns the location of the watcher daemon's single-instance
// lock. It is distinct from LockPath so organize runs and the daemon never
// contend for the same file.
func (c *Config) DaemonLockPath() string {
	return filepath.Join(c.Paths.CacheDir, "stacksd.lock")
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
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
