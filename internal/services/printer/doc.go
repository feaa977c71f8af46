// Package printer queries the PrusaLink HTTP API for printer status and
// job details. Connection failures are reported as transient errors; the
// monitor treats them as "not printing" rather than tearing anything down.
package printer
