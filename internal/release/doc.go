// Package release parses raw media file names into structured releases.
//
// A Parser applies an ordered rule table to a normalized name: explicit
// SxxEyy markers, the NxNN cross form, and, for series content, a bare
// three-digit fallback. The first rule that matches decides season and
// episodes; a delimiter-guarded scan finds the year, and the text before
// the earliest marker becomes the title after the technical vocabulary is
// stripped from it. The same vocabulary drives ExtractDescriptors, which
// reports the quality, source, codec, and edition tags a name carries.
//
// Keep new name heuristics here so the organizer and the renamer never
// drift apart on what a file name means.
package release
