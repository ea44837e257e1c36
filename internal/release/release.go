package release

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors callers can test with errors.Is. Both mark a file the
// organizer should skip rather than fail on.
var (
	// ErrUnparsable reports a name with no usable title, or no episode
	// marker under a series policy.
	ErrUnparsable = errors.New("unparsable release name")
	// ErrSkippedSpecial reports season-zero content, which is never
	// organized into the library.
	ErrSkippedSpecial = errors.New("season zero special")
)

// Policy selects which episode markers Parse honors.
type Policy int

const (
	// PolicyAuto treats a name as episodic when it carries an explicit
	// SxxEyy or NxNN marker and as a movie otherwise.
	PolicyAuto Policy = iota
	// PolicyMovie never looks for episode markers.
	PolicyMovie
	// PolicySeries requires an episode marker and additionally accepts
	// the bare three-digit form (first digit season, last two episode).
	PolicySeries
)

// ParsePolicy maps a flag value onto a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return PolicyAuto, nil
	case "movie", "movies":
		return PolicyMovie, nil
	case "series", "show", "shows", "tv":
		return PolicySeries, nil
	}
	return PolicyAuto, fmt.Errorf("unknown naming policy %q", value)
}

func (p Policy) String() string {
	switch p {
	case PolicyMovie:
		return "movie"
	case PolicySeries:
		return "series"
	default:
		return "auto"
	}
}

// Release is the structured interpretation of one media file name.
type Release struct {
	// RawTitle is the cleaned title text as found in the name. It has not
	// been confirmed against any metadata provider.
	RawTitle string
	// Year is zero when the name carries no plausible year.
	Year int
	// Season is zero for movies.
	Season int
	// Episodes lists the episode numbers covered by the file, ascending
	// and deduplicated. Empty for movies.
	Episodes []int
	// Descriptors holds the technical tags found in the name, upper-cased,
	// in order of first appearance.
	Descriptors []string
}

// IsSeries reports whether the release carries episode information.
func (r Release) IsSeries() bool { return len(r.Episodes) > 0 }

// EpisodeCode renders the zero-padded SxxEyy code. A multi-episode file
// collapses to its first and last episode, as in S01E01-E03. Movies render
// an empty string.
func (r Release) EpisodeCode() string {
	if !r.IsSeries() {
		return ""
	}
	first := r.Episodes[0]
	last := r.Episodes[len(r.Episodes)-1]
	if first == last {
		return fmt.Sprintf("S%02dE%02d", r.Season, first)
	}
	return fmt.Sprintf("S%02dE%02d-E%02d", r.Season, first, last)
}

// DescriptorString joins the descriptors for display and for file naming.
func (r Release) DescriptorString() string {
	return strings.Join(r.Descriptors, " ")
}
