// Package cache provides the two JSON-backed stores the organizer leans on
// between runs.
//
// The metadata cache maps normalized title/year keys to resolved provider
// records so repeat batches never re-query a provider for a title they have
// already identified. The link cache maps source base names to the library
// paths already linked for them, with a staleness check that turns vanished
// destinations back into misses.
//
// Both stores load fully into memory at construction, serve reads under an
// RWMutex, and persist every mutation synchronously through an atomic
// temp-file rename. The files are plain JSON arrays, human-readable and
// safe to inspect or delete between runs.
package cache
