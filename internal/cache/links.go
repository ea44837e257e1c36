package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"stacks/internal/logging"
)

// LinkEntry records one materialized symlink, keyed by the source file's
// base name.
type LinkEntry struct {
	Name     string    `json:"name"`
	Dest     string    `json:"dest"`
	LinkedAt time.Time `json:"linked_at"`
}

// LinkCache remembers which source files have already been linked into the
// library so repeat runs skip them without touching the destination tree.
// Lookup verifies the recorded destination still exists; a vanished link
// reads as a miss so the next run recreates it.
type LinkCache struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]LinkEntry
}

// NewLinkCache loads the cache at path, starting empty when the file does
// not exist yet. An empty path keeps the cache memory-only.
func NewLinkCache(path string, logger *slog.Logger) *LinkCache {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &LinkCache{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "link-cache"),
		entries: make(map[string]LinkEntry),
	}
	if path == "" {
		return c
	}
	if err := c.load(); err != nil {
		c.logger.Warn("failed to load link cache; starting empty", logging.Error(err))
	}
	return c
}

// Lookup returns the entry for the given base name. Entries whose
// destination no longer exists are reported as misses.
func (c *LinkCache) Lookup(name string) (LinkEntry, bool) {
	if strings.TrimSpace(name) == "" {
		return LinkEntry{}, false
	}

	c.mu.RLock()
	entry, found := c.entries[name]
	c.mu.RUnlock()
	if !found {
		return LinkEntry{}, false
	}
	if _, err := os.Lstat(entry.Dest); err != nil {
		c.logger.Debug("link cache entry is stale",
			logging.String("name", name),
			logging.String("dest", entry.Dest))
		return LinkEntry{}, false
	}
	return entry, true
}

// Store adds or replaces an entry and persists the cache before returning.
func (c *LinkCache) Store(entry LinkEntry) error {
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return errors.New("link name cannot be empty")
	}
	if entry.LinkedAt.IsZero() {
		entry.LinkedAt = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.Name] = entry
	if err := c.save(); err != nil {
		return fmt.Errorf("persist link cache: %w", err)
	}
	c.logger.Debug("recorded link",
		logging.String("name", entry.Name),
		logging.String("dest", entry.Dest))
	return nil
}

// List returns all entries, newest first.
func (c *LinkCache) List() []LinkEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedLinkEntries(c.entries)
}

// Clear removes all entries and persists the empty cache.
func (c *LinkCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]LinkEntry)
	if err := c.save(); err != nil {
		return fmt.Errorf("persist link cache: %w", err)
	}
	c.logger.Debug("cleared link cache")
	return nil
}

// Count returns the number of recorded links.
func (c *LinkCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Path returns the backing file path, empty for a memory-only cache.
func (c *LinkCache) Path() string { return c.path }

func (c *LinkCache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []LinkEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	c.entries = make(map[string]LinkEntry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Name) != "" {
			c.entries[entry.Name] = entry
		}
	}
	c.logger.Debug("loaded link cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

func (c *LinkCache) save() error {
	if c.path == "" {
		return nil
	}
	return writeEntries(c.path, sortedLinkEntries(c.entries))
}

func sortedLinkEntries(m map[string]LinkEntry) []LinkEntry {
	entries := make([]LinkEntry, 0, len(m))
	for _, entry := range m {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LinkedAt.Equal(entries[j].LinkedAt) {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].LinkedAt.After(entries[j].LinkedAt)
	})
	return entries
}
