// Package textutil provides small text helpers shared across the module,
// primarily filename and token sanitization for safe filesystem use.
//
// SanitizeFileName is the single place where library path components are
// cleaned: colon handling ": " -> " - " and ":" -> " -" runs before the
// generic unsafe-character rewrite, so the link materializer and the rename
// repair pass always produce identical names for the same title.
package textutil
