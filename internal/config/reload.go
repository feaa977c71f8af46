package config

import "fmt"

// ApplyRuntime copies the settings that are safe to change while the
// daemon runs from updated into c, returning a description of each change.
// Printer connection settings and directory paths are never touched at
// runtime; a restart is required for those.
func (c *Config) ApplyRuntime(updated *Config) []string {
	if updated == nil {
		return nil
	}
	var changes []string

	if updated.Camera.CaptureInterval != c.Camera.CaptureInterval {
		changes = append(changes, fmt.Sprintf("camera.capture_interval: %ds -> %ds", c.Camera.CaptureInterval, updated.Camera.CaptureInterval))
		c.Camera.CaptureInterval = updated.Camera.CaptureInterval
	}
	if updated.Printer.PollInterval != c.Printer.PollInterval {
		changes = append(changes, fmt.Sprintf("printer.poll_interval: %ds -> %ds", c.Printer.PollInterval, updated.Printer.PollInterval))
		c.Printer.PollInterval = updated.Printer.PollInterval
	}
	if updated.Video.FPS != c.Video.FPS {
		changes = append(changes, fmt.Sprintf("video.fps: %d -> %d", c.Video.FPS, updated.Video.FPS))
		c.Video.FPS = updated.Video.FPS
	}
	if updated.Video.Quality != c.Video.Quality {
		changes = append(changes, fmt.Sprintf("video.quality: %d -> %d", c.Video.Quality, updated.Video.Quality))
		c.Video.Quality = updated.Video.Quality
	}
	if updated.Video.BatchSize != c.Video.BatchSize {
		changes = append(changes, fmt.Sprintf("video.batch_size: %d -> %d", c.Video.BatchSize, updated.Video.BatchSize))
		c.Video.BatchSize = updated.Video.BatchSize
	}
	if updated.Camera.Rotation != c.Camera.Rotation {
		changes = append(changes, fmt.Sprintf("camera.rotation: %d -> %d", c.Camera.Rotation, updated.Camera.Rotation))
		c.Camera.Rotation = updated.Camera.Rotation
	}
	if updated.Camera.FocusDistance != c.Camera.FocusDistance {
		changes = append(changes, fmt.Sprintf("camera.focus_distance: %dcm -> %dcm (lens position %.2f -> %.2f)",
			c.Camera.FocusDistance, updated.Camera.FocusDistance, c.LensPosition(), updated.LensPosition()))
		c.Camera.FocusDistance = updated.Camera.FocusDistance
	}
	if updated.Camera.ExtraParams != c.Camera.ExtraParams {
		changes = append(changes, fmt.Sprintf("camera.extra_params: %q -> %q", c.Camera.ExtraParams, updated.Camera.ExtraParams))
		c.Camera.ExtraParams = updated.Camera.ExtraParams
	}

	return changes
}
