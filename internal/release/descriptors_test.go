package release

import (
	"reflect"
	"testing"
)

func TestExtractDescriptorsOrderAndCase(t *testing.T) {
	got := ExtractDescriptors("Some.Movie.2020.1080p.WEB-DL.x264-GRP")
	want := []string{"1080P", "WEB-DL", "X264"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("descriptors = %v, want %v", got, want)
	}
}

func TestExtractDescriptorsDeduplicates(t *testing.T) {
	got := ExtractDescriptors("Show.1080p.BluRay.1080P.mkv")
	want := []string{"1080P", "BLURAY"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("descriptors = %v, want %v", got, want)
	}
}

func TestExtractDescriptorsRespectsBoundaries(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"embedded digits do not match", "Movie.1720p.x264", []string{"X264"}},
		{"group suffix is not a tag", "Movie.2020.x264-SPARKS", []string{"X264"}},
		{"dotted audio tokens", "Movie.2019.DTS.5.1.AAC2.0", []string{"DTS", "5.1", "AAC2.0"}},
		{"longer token wins", "Show.DTS-HD.WEB-DL", []string{"DTS-HD", "WEB-DL"}},
		{"bracketed tags", "Some Movie (2020) [1080p][x265]", []string{"1080P", "X265"}},
		{"nothing technical", "Plain.Movie.Name", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractDescriptors(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExtractDescriptors(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDescriptorString(t *testing.T) {
	rel := Release{Descriptors: []string{"1080P", "WEB-DL", "X264"}}
	if got := rel.DescriptorString(); got != "1080P WEB-DL X264" {
		t.Fatalf("DescriptorString() = %q", got)
	}
	if got := (Release{}).DescriptorString(); got != "" {
		t.Fatalf("empty DescriptorString() = %q", got)
	}
}

func TestCleanTitleStripsNoise(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Some Movie 1080p WEBRip x264", "Some Movie"},
		{"Show Name PROPER REPACK", "Show Name"},
		{"Movie [YIFY]", "Movie"},
		{"Title -", "Title"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := cleanTitle(tc.in); got != tc.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
