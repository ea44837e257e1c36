// Package notifications delivers run and ingest events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set. Typed
// methods cover the milestones worth interrupting someone for: a finished
// organize run, a debrid upload, a quarantined download, and errors. Run
// summaries and error alerts can be toggled independently in configuration.
//
// Extend this package if you need alternative transports; callers depend only
// on the simple Service interface.
package notifications
