package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"stacks/internal/config"
)

func TestLoadDefaultConfigUsesEnvTMDBKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
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

	wantSource := filepath.Join(tempHome, "downloads", "media")
	if cfg.Paths.SourceDir != wantSource {
		t.Fatalf("unexpected source dir: got %q want %q", cfg.Paths.SourceDir, wantSource)
	}
	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "library") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, ".cache", "stacks") {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != config.Default().TMDB.BaseURL {
		t.Fatalf("unexpected TMDB base url: %q", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.Language != "en-US" {
		t.Fatalf("unexpected TMDB language: %q", cfg.TMDB.Language)
	}
	if cfg.Ingest.Enabled {
		t.Fatal("expected ingest disabled by default")
	}
	if cfg.Organize.DryRun {
		t.Fatal("expected dry run disabled by default")
	}
	if cfg.Organize.RequestDelay != config.Default().Organize.RequestDelay {
		t.Fatalf("unexpected request delay: %d", cfg.Organize.RequestDelay)
	}
	if cfg.MetadataCachePath() != filepath.Join(cfg.Paths.CacheDir, "metadata_cache.json") {
		t.Fatalf("unexpected metadata cache path: %q", cfg.MetadataCachePath())
	}
	if cfg.LinkCachePath() != filepath.Join(cfg.Paths.CacheDir, "link_cache.json") {
		t.Fatalf("unexpected link cache path: %q", cfg.LinkCachePath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.LogDir, cfg.Paths.LibraryDir} {
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
	t.Setenv("TMDB_API_KEY", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "stacks.toml")

	type payload struct {
		TMDB struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"tmdb"`
		Organize struct {
			RequestDelay int  `toml:"request_delay"`
			DryRun       bool `toml:"dry_run"`
		} `toml:"organize"`
	}
	custom := payload{}
	custom.TMDB.APIKey = "abc123"
	custom.TMDB.BaseURL = "https://example.com/tmdb"
	custom.Organize.RequestDelay = 7
	custom.Organize.DryRun = true
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
	if cfg.TMDB.APIKey != "abc123" {
		t.Fatalf("expected TMDB key from file, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != "https://example.com/tmdb" {
		t.Fatalf("expected TMDB base url override, got %q", cfg.TMDB.BaseURL)
	}
	if cfg.Organize.RequestDelay != 7 {
		t.Fatalf("expected request delay 7, got %d", cfg.Organize.RequestDelay)
	}
	if !cfg.Organize.DryRun {
		t.Fatal("expected dry run from file")
	}
}

func TestEnvVarOverridesConfigFileForAPIKeys(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "stacks.toml")

	type payload struct {
		TMDB struct {
			APIKey string `toml:"api_key"`
		} `toml:"tmdb"`
		OMDB struct {
			APIKey string `toml:"api_key"`
		} `toml:"omdb"`
	}
	custom := payload{}
	custom.TMDB.APIKey = "file-tmdb"
	custom.OMDB.APIKey = "file-omdb"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("TMDB_API_KEY", "env-tmdb")
	t.Setenv("OMDB_API_KEY", "env-omdb")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.TMDB.APIKey != "env-tmdb" {
		t.Errorf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.OMDB.APIKey != "env-omdb" {
		t.Errorf("expected OMDB key from env, got %q", cfg.OMDB.APIKey)
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
	if !strings.Contains(string(contents), "[tmdb]") {
		t.Fatalf("sample config missing tmdb section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}

	if runtime.GOOS != "windows" {
		if !strings.Contains(cfg.Paths.CacheDir, "stacks") {
			t.Fatalf("expected cache dir to contain stacks, got %q", cfg.Paths.CacheDir)
		}
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Organize.RequestDelay = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive request delay")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Paths.SourceDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty source dir")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing TMDB key")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Ingest.Enabled = true
	cfg.Ingest.DebridBaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when ingest enabled without debrid url")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Ingest.Enabled = true
	cfg.Ingest.DebridBaseURL = "https://debrid.example"
	cfg.Ingest.DebridToken = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when ingest enabled without debrid token")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Notifications.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive notification timeout")
	}
}
