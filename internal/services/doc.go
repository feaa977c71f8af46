// Package services holds the error classification shared by the external
// collaborator clients (printer, camera, ffmpeg, connect) and small context
// annotation helpers used to correlate log output with a capture session.
package services
