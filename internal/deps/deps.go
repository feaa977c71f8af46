// Package deps verifies the external tools and disk headroom the
// daemon needs before it starts polling.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"lapse/internal/config"
)

// Requirement defines an external dependency the daemon relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Required returns the external binaries the daemon shells out to.
func Required(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "rpicam-still",
			Command:     cfg.CameraBinary(),
			Description: "Captures timelapse frames from the Pi camera",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Assembles captured frames into the timelapse video",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckCamera asks the capture binary to enumerate attached cameras. A
// binary that runs but sees no camera is the usual loose-ribbon-cable
// failure, which a PATH lookup alone cannot catch.
func CheckCamera(ctx context.Context, cfg *config.Config) error {
	binary := strings.TrimSpace(cfg.CameraBinary())
	if binary == "" {
		return fmt.Errorf("camera command not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("binary %q not found", binary)
	}
	output, err := exec.CommandContext(ctx, binary, "--list-cameras").CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s --list-cameras: %w", binary, err)
	}
	// rpicam-still reports the empty case in prose, not the exit code.
	if strings.Contains(string(output), "No cameras available") {
		return fmt.Errorf("no camera detected by %s", binary)
	}
	return nil
}

// Verify checks every required binary and returns an error naming the
// missing ones.
func Verify(cfg *config.Config) error {
	var missing []string
	for _, status := range CheckBinaries(Required(cfg)) {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Command)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required binaries: %s", strings.Join(missing, ", "))
	}
	return nil
}
