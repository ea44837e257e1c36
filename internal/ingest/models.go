package ingest

import (
	"path/filepath"
	"strings"
	"time"
)

// Status represents the lifecycle of an ingest item.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUploading   Status = "uploading"
	StatusCompleted   Status = "completed"
	StatusQuarantined Status = "quarantined"
)

var allStatuses = []Status{
	StatusPending,
	StatusUploading,
	StatusCompleted,
	StatusQuarantined,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Kind classifies the drop file that produced an item.
type Kind string

const (
	KindTorrent Kind = "torrent"
	KindMagnet  Kind = "magnet"
	KindText    Kind = "text"
)

// KindForPath maps a drop-folder filename to its ingest kind. The second
// return is false for extensions the watcher does not pick up.
func KindForPath(path string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".torrent":
		return KindTorrent, true
	case ".magnet":
		return KindMagnet, true
	case ".txt":
		return KindText, true
	}
	return "", false
}

// Item represents an ingest queue row persisted in SQLite.
type Item struct {
	ID            int64
	SourcePath    string
	Kind          Kind
	Status        Status
	Attempts      int
	TorrentID     string
	FilesSelected int
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Name returns the drop file basename used in logs and notifications.
func (i Item) Name() string {
	return filepath.Base(i.SourcePath)
}

// Terminal reports whether the item has left the retry loop.
func (i Item) Terminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusQuarantined
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}
