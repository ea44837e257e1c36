// Package organizer drives the batch organize pipeline over a source tree.
//
// Each video file is parsed, resolved against the metadata providers, and
// materialized into the library, strictly one at a time. Sequential
// processing is deliberate: it keeps provider calls paced behind a single
// jittered delay and guarantees the caches have exactly one writer. Per-file
// failures are bucketed into the run summary and never abort the batch; only
// an unreadable source root, a held instance lock, or cancellation do.
package organizer
