package library

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stacks/internal/logging"
	"stacks/internal/services"
	"stacks/internal/textutil"
)

// RenameResult records one rename performed or previewed by FixNames.
type RenameResult struct {
	OldPath string
	NewPath string
	IsDir   bool
	Renamed bool
	Detail  string
}

// Renamer repairs library entries created before colon sanitization, or by
// tools that allowed raw colons in names.
type Renamer struct {
	root   string
	logger *slog.Logger
	dryRun bool
}

// RenamerOption configures a Renamer.
type RenamerOption func(*Renamer)

// WithRenameDryRun previews renames without touching the filesystem.
func WithRenameDryRun(enabled bool) RenamerOption {
	return func(r *Renamer) { r.dryRun = enabled }
}

// NewRenamer returns a Renamer over the destination tree at root.
func NewRenamer(root string, logger *slog.Logger, opts ...RenamerOption) (*Renamer, error) {
	if strings.TrimSpace(root) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "library", "fix-names", "destination root is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Renamer{
		root:   root,
		logger: logging.NewComponentLogger(logger, "library"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// FixNames walks the destination tree and renames entries whose names
// contain a colon to the form the materializer would have produced.
// Directories are renamed before their contents are visited, so children
// always resolve under the repaired path. Per-entry failures are recorded
// and skipped; only an unreadable root aborts the walk.
func (r *Renamer) FixNames() ([]RenameResult, error) {
	info, err := os.Stat(r.root)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "library", "fix-names", "destination root is not readable", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "library", "fix-names", "destination root is not a directory", nil)
	}
	return r.fixDir(r.root), nil
}

func (r *Renamer) fixDir(dir string) []RenameResult {
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.logger.Warn("cannot read directory",
			logging.String("dir", dir),
			logging.Error(err))
		return nil
	}

	var results []RenameResult
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if fixed, ok := fixedName(entry.Name()); ok {
			result := r.rename(path, filepath.Join(dir, fixed), entry.IsDir())
			results = append(results, result)
			if result.Renamed {
				path = result.NewPath
			}
		}
		if entry.IsDir() {
			results = append(results, r.fixDir(path)...)
		}
	}
	return results
}

func (r *Renamer) rename(oldPath, newPath string, isDir bool) RenameResult {
	result := RenameResult{OldPath: oldPath, NewPath: newPath, IsDir: isDir}
	if r.dryRun {
		r.logger.Info("dry run: would rename",
			logging.String("from", oldPath),
			logging.String("to", newPath))
		return result
	}
	if _, err := os.Lstat(newPath); err == nil {
		result.Detail = "target already exists"
		r.logger.Warn("rename target already exists; skipping",
			logging.String("from", oldPath),
			logging.String("to", newPath))
		return result
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		result.Detail = err.Error()
		r.logger.Warn("rename failed",
			logging.String("from", oldPath),
			logging.Error(err))
		return result
	}
	result.Renamed = true
	r.logger.Info("renamed",
		logging.String("from", oldPath),
		logging.String("to", newPath))
	return result
}

// fixedName returns the sanitized form of a path component and whether it
// differs from the original. Only names containing a colon are candidates.
func fixedName(name string) (string, bool) {
	if !strings.Contains(name, ":") {
		return name, false
	}
	fixed := textutil.SanitizeFileName(name)
	if fixed == "" || fixed == name {
		return name, false
	}
	return fixed, true
}
