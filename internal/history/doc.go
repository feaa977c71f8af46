// Package history persists a record of every completed print session
// to SQLite. The daemon appends to it; the CLI reads it back for the
// history view, so the schema stays deliberately flat.
package history
