// Package debrid wraps the remote debrid service REST API used by the
// ingest watcher: add a torrent or magnet, inspect the member file
// listing, and select which files the service should fetch.
//
// The client is deliberately thin. It classifies responses into
// ErrRateLimited (back off and retry) and ErrRejected (the item itself is
// bad, retrying will not help) and leaves retry pacing and quarantine
// policy to the caller.
package debrid
