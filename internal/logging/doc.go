// Package logging assembles the structured slog loggers used across the
// download pipeline.
//
// It owns the console and JSON handlers, fans records out to the per-session
// log file, and exposes context-aware helpers so pipeline code can tag log
// lines with session IDs, track labels, and stage names. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape and routing.
package logging
