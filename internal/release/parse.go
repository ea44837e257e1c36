package release

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Parser turns raw release file names into structured Releases.
type Parser struct {
	policy Policy
}

// NewParser returns a parser honoring the given naming policy.
func NewParser(policy Policy) *Parser {
	return &Parser{policy: policy}
}

var (
	// sitePrefixPattern matches the word.word site tags some indexers
	// prepend to release names.
	sitePrefixPattern = regexp.MustCompile(`(?i)^[a-z0-9]+(?:\.[a-z0-9-]+)+\s*-\s+`)

	// yearPattern requires a delimiter before the year so a leading number
	// that is part of the title, as in "2001 A Space Odyssey", is never
	// taken for one. Plausible years run 1950 through 2099.
	yearPattern = regexp.MustCompile(`[\s(\[,-]((?:19[5-9]\d|20\d{2}))(?:[\s)\],-]|$)`)

	// parentSeasonPattern strips season folder suffixes when deriving a
	// title from the parent directory.
	parentSeasonPattern = regexp.MustCompile(`(?i)[\s._-]*(?:season[\s._-]*\d{1,2}|s\d{1,2}(?:e\d{1,3})?)\s*$`)

	separatorReplacer = strings.NewReplacer(".", " ", "_", " ")
)

// Parse interprets stem, a file name with its extension already removed.
// parent names the containing directory and seeds the title fallback when
// the stem itself yields no usable title. Season-zero names return
// ErrSkippedSpecial; names with no title, or no episode marker under a
// series policy, return ErrUnparsable.
func (p *Parser) Parse(stem, parent string) (Release, error) {
	raw := stripSitePrefix(strings.TrimSpace(stem))
	name := normalizeName(raw)
	if name == "" {
		return Release{}, fmt.Errorf("%w: empty name", ErrUnparsable)
	}

	rel := Release{Descriptors: ExtractDescriptors(raw)}
	year, yearStart := findYear(name)
	rel.Year = year

	var match *episodeMatch
	if p.policy != PolicyMovie {
		match = matchEpisode(name, p.policy == PolicySeries)
	}
	switch {
	case match != nil:
		if match.season == 0 {
			return Release{}, fmt.Errorf("%w: %s", ErrSkippedSpecial, stem)
		}
		rel.Season = match.season
		rel.Episodes = resolveEpisodes(*match)
		cut := match.start
		if yearStart >= 0 && yearStart < cut {
			cut = yearStart
		}
		rel.RawTitle = cleanTitle(name[:cut])
	case p.policy == PolicySeries:
		return Release{}, fmt.Errorf("%w: no episode marker in %q", ErrUnparsable, stem)
	default:
		cut := len(name)
		if yearStart >= 0 {
			cut = yearStart
		}
		rel.RawTitle = cleanTitle(name[:cut])
	}

	if rel.RawTitle == "" {
		rel.RawTitle = parentTitle(parent)
	}
	if rel.RawTitle == "" {
		return Release{}, fmt.Errorf("%w: no title in %q", ErrUnparsable, stem)
	}
	return rel, nil
}

// normalizeName replaces dot and underscore separators with spaces and
// collapses whitespace runs.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(separatorReplacer.Replace(s)), " ")
}

func stripSitePrefix(s string) string {
	return sitePrefixPattern.ReplaceAllString(s, "")
}

// findYear returns the first plausible year in the name and the byte offset
// of its leading delimiter, or -1 when the name carries none.
func findYear(name string) (year, start int) {
	loc := yearPattern.FindStringSubmatchIndex(name)
	if loc == nil {
		return 0, -1
	}
	return atoi(name[loc[2]:loc[3]]), loc[0]
}

// parentTitle derives a title from the containing directory name: season
// suffixes and trailing years are cut, vocabulary tokens stripped, and the
// remainder title-cased, since folder names tend to arrive all lower or
// all upper case.
func parentTitle(parent string) string {
	base := filepath.Base(strings.TrimSpace(parent))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return ""
	}
	name := normalizeName(stripSitePrefix(base))
	name = parentSeasonPattern.ReplaceAllString(name, "")
	if _, start := findYear(name); start >= 0 {
		name = name[:start]
	}
	title := cleanTitle(name)
	if title == "" {
		return ""
	}
	return cases.Title(language.Und).String(title)
}
