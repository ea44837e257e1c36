package preflight

import (
	"context"
	"strings"

	"stacks/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// The source tree is only ever read; the rest must be writable.
	results = append(results, CheckSourceAccess("Source directory", cfg.Paths.SourceDir))
	results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	results = append(results, CheckTMDB(ctx, cfg.TMDB.BaseURL, cfg.TMDB.APIKey))

	// The fallback provider is optional; only probe it when a key is set.
	if strings.TrimSpace(cfg.OMDB.APIKey) != "" {
		results = append(results, CheckOMDB(ctx, cfg.OMDB.BaseURL, cfg.OMDB.APIKey))
	}

	if cfg.Ingest.Enabled {
		results = append(results, RunIngest(ctx, cfg)...)
	}

	return results
}

// RunIngest executes only the checks the ingestion watcher depends on. The
// daemon runs these at startup so a bad watch directory or dead debrid
// endpoint fails fast instead of surfacing as per-item errors.
func RunIngest(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Ingest watch directory", cfg.Ingest.WatchDir),
		CheckDirectoryAccess("Ingest quarantine directory", cfg.Ingest.QuarantineDir),
		CheckDebrid(ctx, cfg.Ingest.DebridBaseURL, cfg.Ingest.DebridToken),
	}
}
