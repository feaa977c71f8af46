// Package config loads, normalizes, and validates the TOML configuration
// shared by the daemon and CLI.
//
// Loading happens in three passes: Default seeds every field, the decoded
// file overrides what it names, then normalize expands paths and applies
// environment fallbacks before Validate enforces the invariants. Values
// that can change while the daemon runs are reapplied through ApplyRuntime
// on each successful reload.
package config
