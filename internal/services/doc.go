// Package services defines shared utilities consumed by the pipeline
// components and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source file names, and ingest item
//     IDs for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (transient vs validation vs not-found) consistent.
//
// Use these helpers when wiring new component logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
