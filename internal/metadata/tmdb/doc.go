// Package tmdb provides the minimal TMDB API client the resolver uses as
// its primary provider.
//
// It exposes movie and TV search with an optional year filter. HTTP 429
// responses surface as ErrRateLimited so the resolver can apply its own
// backoff; the client never sleeps or retries on its own. Options allow
// tests to supply custom HTTP clients without modifying production code.
package tmdb
