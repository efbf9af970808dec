// Package logging assembles structured slog loggers and formatting helpers used
// across autoprotocol.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standard field keys components tag their lines
// with. The package also provides a no-op logger for tests and wiring code
// that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
