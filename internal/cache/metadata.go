package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"stacks/internal/logging"
)

// MetadataEntry is one resolved title, keyed by the normalized search key.
// Year is zero when the provider reported none; Raw carries the provider
// result exactly as it came over the wire.
type MetadataEntry struct {
	Key        string          `json:"key"`
	Title      string          `json:"title"`
	Year       int             `json:"year"`
	MediaType  string          `json:"media_type"`  // "movie" or "tv"
	Provider   string          `json:"provider"`    // "tmdb" or "omdb"
	ProviderID string          `json:"provider_id"` // numeric for TMDB, tt-prefixed for OMDb
	Raw        json.RawMessage `json:"raw,omitempty"`
	CachedAt   time.Time       `json:"cached_at"`
}

// MetadataKey builds the cache key for a parsed title and optional year
// hint: the lower-cased title, a pipe, and the year when one is known. A
// missing year leaves the segment empty so hinted and unhinted lookups
// never collide.
func MetadataKey(title string, year int) string {
	key := strings.ToLower(strings.TrimSpace(title)) + "|"
	if year > 0 {
		key += strconv.Itoa(year)
	}
	return key
}

// MetadataCache maps search keys to resolved metadata. Lookups are served
// from memory; every mutation is persisted synchronously so an interrupted
// run never loses resolutions it already paid provider calls for.
type MetadataCache struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]MetadataEntry
}

// NewMetadataCache loads the cache at path, starting empty when the file
// does not exist yet. An empty path keeps the cache memory-only.
func NewMetadataCache(path string, logger *slog.Logger) *MetadataCache {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &MetadataCache{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "metadata-cache"),
		entries: make(map[string]MetadataEntry),
	}
	if path == "" {
		return c
	}
	if err := c.load(); err != nil {
		c.logger.Warn("failed to load metadata cache; starting empty", logging.Error(err))
	}
	return c
}

// Lookup returns the entry for the given key if present.
func (c *MetadataCache) Lookup(key string) (MetadataEntry, bool) {
	if strings.TrimSpace(key) == "" {
		return MetadataEntry{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, found := c.entries[key]
	return entry, found
}

// Store adds or replaces an entry and persists the cache before returning.
func (c *MetadataCache) Store(entry MetadataEntry) error {
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return errors.New("cache key cannot be empty")
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.Key] = entry
	if err := c.save(); err != nil {
		return fmt.Errorf("persist metadata cache: %w", err)
	}
	c.logger.Debug("cached resolution",
		logging.String("key", entry.Key),
		logging.String(logging.FieldTitle, entry.Title),
		logging.String(logging.FieldProvider, entry.Provider))
	return nil
}

// List returns all entries, newest first.
func (c *MetadataCache) List() []MetadataEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedMetadataEntries(c.entries)
}

// Clear removes all entries and persists the empty cache.
func (c *MetadataCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]MetadataEntry)
	if err := c.save(); err != nil {
		return fmt.Errorf("persist metadata cache: %w", err)
	}
	c.logger.Debug("cleared metadata cache")
	return nil
}

// Count returns the number of cached resolutions.
func (c *MetadataCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Path returns the backing file path, empty for a memory-only cache.
func (c *MetadataCache) Path() string { return c.path }

func (c *MetadataCache) load() error {
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

	var entries []MetadataEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	c.entries = make(map[string]MetadataEntry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) != "" {
			c.entries[entry.Key] = entry
		}
	}
	c.logger.Debug("loaded metadata cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

func (c *MetadataCache) save() error {
	if c.path == "" {
		return nil
	}
	return writeEntries(c.path, sortedMetadataEntries(c.entries))
}

func sortedMetadataEntries(m map[string]MetadataEntry) []MetadataEntry {
	entries := make([]MetadataEntry, 0, len(m))
	for _, entry := range m {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CachedAt.Equal(entries[j].CachedAt) {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})
	return entries
}

// writeEntries marshals entries and replaces path atomically via a temp
// file rename, so a crash mid-write never corrupts the cache.
func writeEntries(path string, entries any) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
