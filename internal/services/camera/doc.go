// Package camera drives the Raspberry Pi camera through the rpicam-still
// CLI. Each capture is a fresh process invocation; there is no persistent
// camera handle to manage.
package camera
