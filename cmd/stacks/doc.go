// Package main hosts the stacks CLI entrypoint and command graph.
//
// The Cobra-based command tree wires terminal invocations to the organize
// pipeline, library name repair, cache maintenance, preflight checks, and
// configuration scaffolding. It centralizes configuration resolution and
// logger setup so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
