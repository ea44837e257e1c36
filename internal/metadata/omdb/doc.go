// Package omdb provides the minimal OMDb API client the resolver uses as
// its fallback provider.
//
// OMDb's t= lookup matches exact titles, which makes it good at names the
// TMDB fuzzy search stumbles over. Misses arrive as HTTP 200 with a
// Response of "False" and surface here as ErrNotFound.
package omdb
