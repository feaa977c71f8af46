// Package daemon ties the monitor, history store, and single-instance
// lock together into the long-running lapsed process.
package daemon
