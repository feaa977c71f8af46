// Package report produces the artifacts that accompany a finished
// timelapse: a plaintext print log next to the video and an optional
// HTML completion email with the video attached.
package report
