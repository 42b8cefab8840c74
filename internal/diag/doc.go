// Package diag defines the diagnostic model shared by the lexer, parser and
// code generator.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// # Emitting diagnostics
//
// Phases use a diag.Reporter to decouple emission from storage. BagReporter
// aggregates diagnostics into a Bag, which supports sorting, deduplication and
// a hard upper bound on stored entries.
//
// Package diag does not format anything for terminals; rendering lives in
// internal/diagfmt. The only text form produced here is the single-line
// short format used by golden tests and `--format short`.
package diag
