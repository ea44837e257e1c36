// Package metadata resolves parsed titles into confirmed provider records.
//
// The Resolver consults its cache first, then the primary TMDB-style
// search, then an OMDb-style exact-title fallback whose canonical title is
// re-queried against the primary. Rate-limit refusals from the primary are
// retried with a doubling backoff up to a configured attempt budget and
// then surface as a typed RateLimitError. Misses surface as
// services.ErrNotFound and are deliberately never cached.
//
// The resolver never sleeps between distinct resolutions; pacing between
// titles belongs to the batch orchestrator.
package metadata
