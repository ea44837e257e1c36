// Package logs tails the application log file for the CLI.
//
// TailLines reads the last N lines with bounded memory; Follow polls from a
// byte offset, emitting only complete lines, so `stacks logs --follow` can
// stream the file the watcher daemon is writing to. Rotated or truncated
// files are detected by a shrinking size and re-read from the start.
package logs
