// Package connect pushes camera snapshots to the Prusa Connect webcam
// endpoint. Uploads are best effort; the monitor logs failures and moves
// on rather than letting a cloud outage stall the capture loop.
package connect
