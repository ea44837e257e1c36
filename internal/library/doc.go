// Package library materializes resolved releases into a canonical media
// library layout.
//
// Entries are symbolic links back to the original files, named
// "Title (Year)" with an optional episode code and descriptor string, and
// series nest a per-season folder. The materializer is idempotent: a live
// link-cache entry or an existing destination short-circuits before any
// filesystem work, so repeat runs over the same sources are cheap no-ops.
//
// The package also carries the fix-names repair pass, which rewrites
// already-created entries containing characters the sanitizer would have
// rejected, using the same rules as creation so both always agree.
package library
