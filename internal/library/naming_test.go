package library

import (
	"path/filepath"
	"testing"

	"stacks/internal/cache"
	"stacks/internal/release"
)

func TestFolderName(t *testing.T) {
	tests := []struct {
		name   string
		record cache.MetadataEntry
		want   string
	}{
		{"movie with year", cache.MetadataEntry{Title: "Some Movie", Year: 2020}, "Some Movie (2020)"},
		{"no year renders placeholder", cache.MetadataEntry{Title: "Some Movie"}, "Some Movie (0000)"},
		{"colon rewritten", cache.MetadataEntry{Title: "Avatar: The Way of Water", Year: 2022}, "Avatar - The Way of Water (2022)"},
		{"bare colon", cache.MetadataEntry{Title: "Colon:Title", Year: 2001}, "Colon -Title (2001)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FolderName(tt.record)
			if got != tt.want {
				t.Errorf("FolderName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeasonFolder(t *testing.T) {
	if got := SeasonFolder(1); got != "Season 1" {
		t.Errorf("SeasonFolder(1) = %q, want %q", got, "Season 1")
	}
	if got := SeasonFolder(12); got != "Season 12" {
		t.Errorf("SeasonFolder(12) = %q, want %q", got, "Season 12")
	}
}

func TestDestinationPath(t *testing.T) {
	tests := []struct {
		name   string
		rel    release.Release
		record cache.MetadataEntry
		ext    string
		want   string
	}{
		{
			name:   "movie with descriptors",
			rel:    release.Release{RawTitle: "Some Movie", Year: 2020, Descriptors: []string{"1080P", "WEB-DL", "X264"}},
			record: cache.MetadataEntry{Title: "Some Movie", Year: 2020},
			ext:    ".mkv",
			want:   filepath.Join("dest", "Some Movie (2020)", "Some Movie (2020) - 1080P WEB-DL X264.mkv"),
		},
		{
			name:   "movie without descriptors",
			rel:    release.Release{RawTitle: "Some Movie", Year: 2020},
			record: cache.MetadataEntry{Title: "Some Movie", Year: 2020},
			ext:    ".mp4",
			want:   filepath.Join("dest", "Some Movie (2020)", "Some Movie (2020).mp4"),
		},
		{
			name:   "series episode nests season folder",
			rel:    release.Release{RawTitle: "Some Show", Season: 1, Episodes: []int{2}},
			record: cache.MetadataEntry{Title: "Some Show", Year: 2019},
			ext:    ".mkv",
			want:   filepath.Join("dest", "Some Show (2019)", "Season 1", "Some Show (2019) - S01E02.mkv"),
		},
		{
			name:   "multi episode span",
			rel:    release.Release{RawTitle: "Some Show", Season: 1, Episodes: []int{1, 2, 3}},
			record: cache.MetadataEntry{Title: "Some Show", Year: 2019},
			ext:    ".mkv",
			want:   filepath.Join("dest", "Some Show (2019)", "Season 1", "Some Show (2019) - S01E01-E03.mkv"),
		},
		{
			name:   "series with descriptors",
			rel:    release.Release{RawTitle: "Some Show", Season: 3, Episodes: []int{9}, Descriptors: []string{"720P", "HDTV"}},
			record: cache.MetadataEntry{Title: "Some Show", Year: 2014},
			ext:    ".mkv",
			want:   filepath.Join("dest", "Some Show (2014)", "Season 3", "Some Show (2014) - S03E09 - 720P HDTV.mkv"),
		},
		{
			name:   "colon title sanitized everywhere",
			rel:    release.Release{RawTitle: "Avatar The Way of Water", Year: 2022, Descriptors: []string{"2160P"}},
			record: cache.MetadataEntry{Title: "Avatar: The Way of Water", Year: 2022},
			ext:    ".mkv",
			want:   filepath.Join("dest", "Avatar - The Way of Water (2022)", "Avatar - The Way of Water (2022) - 2160P.mkv"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DestinationPath("dest", tt.rel, tt.record, tt.ext)
			if got != tt.want {
				t.Errorf("DestinationPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
