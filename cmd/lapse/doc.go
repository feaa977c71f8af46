// Package main hosts the Lapse CLI entrypoint and command graph.
//
// The Cobra-based command tree covers running the daemon in the
// foreground, inspecting daemon state and session history, configuration
// scaffolding, and one-shot hardware checks (test capture, test
// notification). It centralizes configuration resolution so subcommands
// can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags
// here.
package main
