// Package logging constructs the slog loggers used across the daemon and
// CLI. It provides a console handler tuned for systemd/journal output, a
// JSON handler for machine consumption, and small attribute helpers so
// callers do not import log/slog directly.
package logging
