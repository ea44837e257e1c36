package ingest

import (
	"path/filepath"
	"regexp"
	"strings"

	"stacks/internal/debrid"
)

// Remote member paths are matched against the same container formats the
// organizer walks locally.
var videoExtensions = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".avi":  {},
	".m4v":  {},
	".mov":  {},
	".wmv":  {},
	".flv":  {},
	".webm": {},
	".ts":   {},
	".m2ts": {},
}

var blockedTokens = []string{"sample", "trailer", "extras"}

var episodeMarker = regexp.MustCompile(`(?i)\bs\d{1,2}e\d{1,3}\b|\b\d{1,2}x\d{2}\b`)

// SelectFiles picks the member files of a torrent worth fetching: video
// extensions only, at least minBytes large, with sample/trailer/extras
// noise dropped. When two or more survivors carry an episode marker the
// selection narrows to just those, so bonus content riding along in an
// episodic drop is left behind.
func SelectFiles(files []debrid.File, minBytes int64) []debrid.File {
	candidates := make([]debrid.File, 0, len(files))
	for _, file := range files {
		if selectable(file, minBytes) {
			candidates = append(candidates, file)
		}
	}

	episodic := make([]debrid.File, 0, len(candidates))
	for _, file := range candidates {
		if episodeMarker.MatchString(filepath.Base(file.Path)) {
			episodic = append(episodic, file)
		}
	}
	if len(episodic) >= 2 {
		return episodic
	}
	return candidates
}

func selectable(file debrid.File, minBytes int64) bool {
	ext := strings.ToLower(filepath.Ext(file.Path))
	if _, ok := videoExtensions[ext]; !ok {
		return false
	}
	if file.Bytes < minBytes {
		return false
	}
	name := strings.ToLower(filepath.Base(file.Path))
	for _, token := range blockedTokens {
		if strings.Contains(name, token) {
			return false
		}
	}
	return true
}

// FileIDs maps selected files to the identifiers the select endpoint
// expects.
func FileIDs(files []debrid.File) []int {
	ids := make([]int, 0, len(files))
	for _, file := range files {
		ids = append(ids, file.ID)
	}
	return ids
}

// countSelected reports how many files the service already marked selected,
// falling back to the full count when it marked none.
func countSelected(files []debrid.File) int {
	selected := 0
	for _, file := range files {
		if file.Selected != 0 {
			selected++
		}
	}
	if selected == 0 {
		return len(files)
	}
	return selected
}
