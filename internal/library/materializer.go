package library

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stacks/internal/cache"
	"stacks/internal/logging"
	"stacks/internal/release"
	"stacks/internal/services"
)

// LinkStatus describes the outcome of materializing one source file.
type LinkStatus string

const (
	// StatusLinked means a new symlink was created.
	StatusLinked LinkStatus = "linked"
	// StatusCached means the link cache already records a live destination
	// for this source file.
	StatusCached LinkStatus = "cached"
	// StatusExists means the destination already existed on disk, created
	// by an earlier run or another tool.
	StatusExists LinkStatus = "exists"
	// StatusDryRun means the destination was computed but not created.
	StatusDryRun LinkStatus = "dry-run"
)

// LinkResult reports what Materialize decided for one source file.
type LinkResult struct {
	Status LinkStatus
	Source string
	Dest   string
}

// Materializer lays out canonical library entries as symbolic links back to
// the original files. Source content is never copied or moved.
type Materializer struct {
	root   string
	links  *cache.LinkCache
	logger *slog.Logger
	dryRun bool
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithDryRun makes Materialize report intended links without creating them
// or recording them in the link cache.
func WithDryRun(enabled bool) Option {
	return func(m *Materializer) { m.dryRun = enabled }
}

// NewMaterializer returns a Materializer rooted at the destination tree.
// A nil links cache keeps link state in memory only.
func NewMaterializer(root string, links *cache.LinkCache, logger *slog.Logger, opts ...Option) (*Materializer, error) {
	if strings.TrimSpace(root) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "library", "new", "destination root is required", nil)
	}
	if links == nil {
		links = cache.NewLinkCache("", logger)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Materializer{
		root:   root,
		links:  links,
		logger: logging.NewComponentLogger(logger, "library"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Materialize links sourcePath into the canonical layout for the parsed
// release and its resolved record. Repeat calls for the same source are
// no-ops: a live link-cache entry or an existing destination short-circuits
// before any filesystem mutation.
func (m *Materializer) Materialize(sourcePath string, rel release.Release, record cache.MetadataEntry) (LinkResult, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return LinkResult{}, services.Wrap(services.ErrValidation, "library", "materialize", "source path is required", nil)
	}
	if strings.TrimSpace(record.Title) == "" {
		return LinkResult{}, services.Wrap(services.ErrValidation, "library", "materialize", "record title is required", nil)
	}

	base := filepath.Base(sourcePath)
	dest := DestinationPath(m.root, rel, record, filepath.Ext(sourcePath))
	result := LinkResult{Source: sourcePath, Dest: dest}

	// Lookup drops entries whose destination no longer exists, so a hit
	// here means the recorded link is still live.
	if entry, ok := m.links.Lookup(base); ok {
		result.Status = StatusCached
		result.Dest = entry.Dest
		m.logger.Debug("already linked",
			logging.String(logging.FieldFile, base),
			logging.String("dest", entry.Dest))
		return result, nil
	}

	switch _, err := os.Lstat(dest); {
	case err == nil:
		result.Status = StatusExists
		m.logger.Debug("destination already exists; skipping",
			logging.String(logging.FieldFile, base),
			logging.String("dest", dest))
		return result, nil
	case !errors.Is(err, fs.ErrNotExist):
		return result, services.Wrap(services.ErrTransient, "library", "materialize", "inspect destination", err)
	}

	if m.dryRun {
		result.Status = StatusDryRun
		m.logger.Info("dry run: would link",
			logging.String(logging.FieldFile, base),
			logging.String("dest", dest))
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return result, services.Wrap(services.ErrTransient, "library", "materialize", "create destination directory", err)
	}
	if err := os.Symlink(sourcePath, dest); err != nil {
		// Lost a race with another writer; the entry is there either way.
		if errors.Is(err, fs.ErrExist) {
			result.Status = StatusExists
			return result, nil
		}
		return result, services.Wrap(services.ErrTransient, "library", "materialize", "create symlink", err)
	}
	if err := m.links.Store(cache.LinkEntry{Name: base, Dest: dest}); err != nil {
		m.logger.Warn("link created but cache update failed", logging.Error(err))
	}

	result.Status = StatusLinked
	m.logger.Info("linked",
		logging.String(logging.FieldFile, base),
		logging.String(logging.FieldTitle, record.Title),
		logging.String("dest", dest))
	return result, nil
}
