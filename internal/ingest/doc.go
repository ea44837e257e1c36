// Package ingest watches the drop folder for torrent, magnet, and text
// files and pushes them to the remote debrid service.
//
// Discovered files become rows in a SQLite-backed queue (pending ->
// uploading -> completed | quarantined). Uploads that fail transiently are
// retried with a linear backoff, attempt times the configured base delay,
// up to the attempt bound; items the service rejects, or whose member
// listing holds nothing selectable, move to the quarantine folder along
// with their queue row.
//
// Member file selection keeps video extensions above the configured size
// floor, drops sample/trailer/extras noise, and narrows to episode-marked
// files when the drop is episodic.
package ingest
