// Package logging builds slog loggers for gatekeeper and standardizes the
// structured attribute keys used across the validation pipeline.
//
// Console output renders a compact human-readable line; JSON output is meant
// for ingestion. Helpers mirror slog attribute constructors so call sites stay
// terse, and WithContext threads refid/state annotations from the request
// context into every record.
package logging
