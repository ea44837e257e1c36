package library

import (
	"fmt"
	"path/filepath"

	"stacks/internal/cache"
	"stacks/internal/release"
	"stacks/internal/textutil"
)

// FolderName returns the canonical library folder for a resolved record,
// "Title (Year)". A record without a year renders the "0000" placeholder.
func FolderName(record cache.MetadataEntry) string {
	title := textutil.SanitizeFileName(record.Title)
	if record.Year <= 0 {
		return title + " (0000)"
	}
	return fmt.Sprintf("%s (%d)", title, record.Year)
}

// SeasonFolder returns the per-season directory name for series entries.
// The season number is not zero-padded here, only in episode codes.
func SeasonFolder(season int) string {
	return fmt.Sprintf("Season %d", season)
}

// FileName builds the canonical filename for a library entry: the folder
// name, the episode code for series, and the descriptor string when present,
// joined with " - ", plus the source extension.
func FileName(rel release.Release, record cache.MetadataEntry, ext string) string {
	name := FolderName(record)
	if code := rel.EpisodeCode(); code != "" {
		name += " - " + code
	}
	if desc := rel.DescriptorString(); desc != "" {
		name += " - " + desc
	}
	return name + ext
}

// DestinationPath computes the full library path for a release under root.
// Movies land directly in the title folder; series nest a season folder:
//
//	root/Some Movie (2020)/Some Movie (2020) - 1080P WEB-DL X264.mkv
//	root/Some Show (2019)/Season 1/Some Show (2019) - S01E02.mkv
func DestinationPath(root string, rel release.Release, record cache.MetadataEntry, ext string) string {
	parts := []string{root, FolderName(record)}
	if rel.IsSeries() {
		parts = append(parts, SeasonFolder(rel.Season))
	}
	parts = append(parts, FileName(rel, record, ext))
	return filepath.Join(parts...)
}
