// Package logging assembles structured slog loggers and formatting helpers used
// across SonaShow services.
//
// It owns the configurable console/JSON handlers and centralizes level and
// output plumbing. Component loggers tag every line with the subsystem that
// produced it, and the WarnWithContext/ErrorWithContext helpers keep warning
// and error records shaped consistently (event type, hint, impact). The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
