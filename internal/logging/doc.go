// Package logging assembles structured slog loggers and attribute helpers
// used across cutroom.
//
// It owns the configurable console/JSON handlers and the level and output
// plumbing, and it defines the standard field keys (component, event_type,
// error_hint, impact, project identifiers) so compensating-cleanup warnings
// and lifecycle events carry the same shape everywhere. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
