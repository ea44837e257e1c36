// Package preflight provides readiness checks for the directories and
// external services stacks depends on.
//
// The CLI "stacks doctor" command runs RunAll and renders the results; the
// daemon runs the ingest-specific checks before starting the watcher. Each
// check is gated by its config toggle, so unconfigured features are skipped.
package preflight
