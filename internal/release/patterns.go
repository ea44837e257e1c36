package release

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxEpisodeSpan bounds explicit episode ranges. A range whose end is more
// than this many episodes past its start collapses to the start episode.
const maxEpisodeSpan = 20

// episodeMatch records what an episode rule found in a normalized name.
type episodeMatch struct {
	season   int
	episodes []int // explicit episode numbers in written order
	rangeEnd int   // zero unless a single marker spelled an end episode
	start    int   // byte offset of the first marker, for title cutting
}

// episodeRule pairs a compiled pattern with its extraction logic. Rules are
// evaluated in order by matchEpisode; the first rule with any match wins and
// later rules are never consulted. Rules marked bare are consulted only
// under a series policy.
type episodeRule struct {
	name    string
	pattern *regexp.Regexp
	bare    bool
	extract func(name string, locs [][]int) episodeMatch
}

var (
	seasonEpisodePattern = regexp.MustCompile(
		`(?i)\bS(\d{1,2})\s?((?:-?\s?E\d{1,3})+)\b`)

	crossEpisodePattern = regexp.MustCompile(
		`(?i)\b(\d{1,2})x(\d{1,3})(?:x(\d{1,3}))?\b`)

	bareEpisodePattern = regexp.MustCompile(
		`\b(\d)(\d{2})\b`)

	episodeTokenPattern = regexp.MustCompile(`(?i)E(\d{1,3})`)
)

var episodeRules = []episodeRule{
	{name: "season-episode", pattern: seasonEpisodePattern, extract: extractSeasonEpisode},
	{name: "cross", pattern: crossEpisodePattern, extract: extractCrossEpisode},
	{name: "bare-digits", pattern: bareEpisodePattern, bare: true, extract: extractBareEpisode},
}

// matchEpisode runs the rule table against a normalized name. It returns nil
// when no rule matches.
func matchEpisode(name string, includeBare bool) *episodeMatch {
	for _, rule := range episodeRules {
		if rule.bare && !includeBare {
			continue
		}
		locs := rule.pattern.FindAllStringSubmatchIndex(name, -1)
		if len(locs) == 0 {
			continue
		}
		m := rule.extract(name, locs)
		return &m
	}
	return nil
}

// extractSeasonEpisode handles the SxxEyy family, including continuation
// markers (S01E01E02) and dashed ranges (S01E01-E03). The first marker
// governs the season. A dashed pair in a lone marker is a range; every
// other arrangement contributes explicit episode numbers.
func extractSeasonEpisode(name string, locs [][]int) episodeMatch {
	m := episodeMatch{start: locs[0][0]}
	for i, loc := range locs {
		if i == 0 {
			m.season = atoi(name[loc[2]:loc[3]])
		}
		blob := name[loc[4]:loc[5]]
		nums := episodeTokenPattern.FindAllStringSubmatch(blob, -1)
		for _, n := range nums {
			m.episodes = append(m.episodes, atoi(n[1]))
		}
		if len(locs) == 1 && len(nums) == 2 && strings.Contains(blob, "-") {
			m.rangeEnd = m.episodes[1]
			m.episodes = m.episodes[:1]
		}
	}
	return m
}

// extractCrossEpisode handles the NxNN family. A third number in a lone
// marker (1x01x03) is an end episode; with several markers every number is
// an explicit episode.
func extractCrossEpisode(name string, locs [][]int) episodeMatch {
	m := episodeMatch{start: locs[0][0]}
	for i, loc := range locs {
		if i == 0 {
			m.season = atoi(name[loc[2]:loc[3]])
		}
		m.episodes = append(m.episodes, atoi(name[loc[4]:loc[5]]))
		if loc[6] < 0 {
			continue
		}
		end := atoi(name[loc[6]:loc[7]])
		if len(locs) == 1 {
			m.rangeEnd = end
		} else {
			m.episodes = append(m.episodes, end)
		}
	}
	return m
}

// extractBareEpisode handles the bare three-digit fallback: first digit is
// the season, the remaining two the episode.
func extractBareEpisode(name string, locs [][]int) episodeMatch {
	m := episodeMatch{start: locs[0][0]}
	for i, loc := range locs {
		if i == 0 {
			m.season = atoi(name[loc[2]:loc[3]])
		}
		m.episodes = append(m.episodes, atoi(name[loc[4]:loc[5]]))
	}
	return m
}

// resolveEpisodes turns a raw match into the final episode list: a lone
// dashed range expands to the full ascending sequence when the end is past
// the start and within maxEpisodeSpan, while explicit numbers are
// deduplicated and sorted.
func resolveEpisodes(m episodeMatch) []int {
	if m.rangeEnd > 0 && len(m.episodes) == 1 {
		start := m.episodes[0]
		if m.rangeEnd > start && m.rangeEnd-start <= maxEpisodeSpan {
			eps := make([]int, 0, m.rangeEnd-start+1)
			for ep := start; ep <= m.rangeEnd; ep++ {
				eps = append(eps, ep)
			}
			return eps
		}
		return []int{start}
	}
	seen := make(map[int]struct{}, len(m.episodes))
	eps := make([]int, 0, len(m.episodes))
	for _, ep := range m.episodes {
		if _, ok := seen[ep]; ok {
			continue
		}
		seen[ep] = struct{}{}
		eps = append(eps, ep)
	}
	sort.Ints(eps)
	return eps
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
