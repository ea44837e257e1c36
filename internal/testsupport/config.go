package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"stacks/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Paths.SourceDir = filepath.Join(base, "source")
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Ingest.WatchDir = filepath.Join(base, "drop")
	cfgVal.Ingest.QuarantineDir = filepath.Join(base, "quarantine")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	// EnsureDirectories leaves the source tree alone; tests expect it.
	if err := os.MkdirAll(builder.cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatalf("ensure source dir: %v", err)
	}

	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithIngestEnabled turns the drop-folder watcher on with a stub debrid
// endpoint and baseline retry settings.
func WithIngestEnabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.Enabled = true
		b.cfg.Ingest.DebridBaseURL = "http://127.0.0.1:0"
		b.cfg.Ingest.DebridToken = "test"
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}
