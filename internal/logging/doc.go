// Package logging builds the slog loggers shared by the mixtape CLI and its
// internal packages.
//
// It owns the console and JSON handlers, level parsing, and the standard field
// keys (origin, destination, playlist, encoder, run_id) so every component
// emits records with the same shape. Components never reach for a global
// logger: callers construct one here and pass it down, usually scoped with
// NewComponentLogger.
package logging
