// Package logging builds the slog loggers used across skald: a compact
// console handler for interactive runs, a JSON handler for machine-readable
// logs, and context helpers that stamp item IDs, stage names, and correlation
// identifiers onto every record emitted inside a stage.
package logging
