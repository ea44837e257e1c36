package release

import (
	"regexp"
	"strings"
)

// descriptorFamily groups the technical tags of one concern. Family order
// fixes alternation priority, and within a family longer tokens precede
// their prefixes so the compiled pattern never settles for a partial match.
type descriptorFamily struct {
	name   string
	tokens []string
}

// descriptorFamilies is the single source of truth for the technical
// vocabulary. The same tokens double as the label-strip list that keeps
// release noise out of parsed titles.
var descriptorFamilies = []descriptorFamily{
	{"resolution", []string{
		"2160p", "1080p", "1080i", "720p", "576p", "480p", "4k", "uhd", "hdr10", "hdr",
	}},
	{"source", []string{
		"web-dl", "webrip", "web", "bluray", "blu-ray", "bdrip", "brrip",
		"dvdrip", "dvd", "hdtv", "hdrip", "remux", "cam",
	}},
	{"video", []string{
		"x264", "x265", "h264", "h265", "hevc", "avc", "av1", "xvid", "divx",
		"10bit", "8bit",
	}},
	{"audio", []string{
		"atmos", "truehd", "dts-hd", "dts", "eac3", "ac3", "aac2.0", "aac",
		"flac", "ddp5.1", "dd5.1", "5.1", "7.1",
	}},
	{"edition", []string{
		"extended", "unrated", "remastered", "theatrical", "imax", "limited",
		"uncut", "redux",
	}},
}

// noiseTokens extend the label-strip list with tags that pollute titles but
// never belong in a library name: scene groups, release flags, and
// streaming platform tags. They are stripped, not reported as descriptors.
var noiseTokens = []string{
	"yify", "yts", "rarbg", "eztv", "ettv", "etrg", "evo", "fgt", "ntb",
	"sparks", "amiable", "geckos", "qxr", "tigole",
	"proper", "repack", "readnfo", "multi", "dubbed", "subbed",
	"amzn", "nf", "dsnp", "hulu", "hmax", "atvp",
}

// descriptorPattern matches any vocabulary token preceded by the start of
// the text or a non-alphanumeric separator. The trailing boundary cannot be
// part of the pattern without swallowing the separator the next token
// needs, so ExtractDescriptors checks it by hand.
var descriptorPattern *regexp.Regexp

// labelTokens is the combined strip set, keyed by lower-cased token.
var labelTokens map[string]struct{}

func init() {
	var alts []string
	labelTokens = make(map[string]struct{})
	for _, fam := range descriptorFamilies {
		for _, tok := range fam.tokens {
			alts = append(alts, regexp.QuoteMeta(tok))
			labelTokens[tok] = struct{}{}
		}
	}
	for _, tok := range noiseTokens {
		labelTokens[tok] = struct{}{}
	}
	descriptorPattern = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(` + strings.Join(alts, "|") + `)`)
}

// ExtractDescriptors scans the original name text, before any label
// stripping, and returns the technical tags it carries: deduplicated,
// upper-cased, in order of first appearance. It returns nil when the name
// carries none.
func ExtractDescriptors(name string) []string {
	matches := descriptorPattern.FindAllStringSubmatchIndex(name, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, loc := range matches {
		end := loc[3]
		if end < len(name) && isAlnum(name[end]) {
			continue
		}
		tag := strings.ToUpper(name[loc[2]:loc[3]])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// cleanTitle strips vocabulary tokens and bracket leftovers from a title
// segment and trims dangling separators.
func cleanTitle(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, field := range fields {
		trimmed := strings.Trim(field, "()[]{}")
		if trimmed == "" {
			continue
		}
		if _, ok := labelTokens[strings.ToLower(trimmed)]; ok {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Trim(strings.Join(kept, " "), " -")
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
