package camera

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"lapse/internal/config"
	"lapse/internal/services"
)

// Capturer defines the behaviour required by the capture scheduler.
type Capturer interface {
	Capture(ctx context.Context, outputPath string) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps rpicam-still CLI interactions.
type Client struct {
	binary         string
	width          int
	height         int
	lensPosition   float64
	extraParams    []string
	captureTimeout time.Duration
	exec           Executor
}

// New constructs a camera client from configuration. Extra parameters
// are validated once here rather than on every capture.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("camera client requires config")
	}
	if err := config.SanitizeExtraParams(cfg.Camera.ExtraParams); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "camera", "validate extra params", "", err)
	}
	client := &Client{
		binary:         cfg.CameraBinary(),
		width:          cfg.Camera.Width,
		height:         cfg.Camera.Height,
		lensPosition:   cfg.LensPosition(),
		extraParams:    splitParams(cfg.Camera.ExtraParams),
		captureTimeout: time.Duration(cfg.Camera.CaptureTimeout) * time.Second,
		exec:           commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Capture takes a single still and writes it to outputPath.
func (c *Client) Capture(ctx context.Context, outputPath string) error {
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}

	captureCtx := ctx
	if c.captureTimeout > 0 {
		var cancel context.CancelFunc
		captureCtx, cancel = context.WithTimeout(ctx, c.captureTimeout)
		defer cancel()
	}

	args := c.buildArgs(outputPath)
	output, err := c.exec.Run(captureCtx, c.binary, args)
	if err != nil {
		if errors.Is(captureCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "camera", "capture",
				fmt.Sprintf("capture timed out after %s", c.captureTimeout), err)
		}
		msg := strings.TrimSpace(output)
		if msg == "" {
			msg = "capture failed"
		}
		return services.Wrap(services.ErrExternalTool, "camera", "capture", msg, err)
	}
	return nil
}

// buildArgs assembles the rpicam-still argument vector. The 1ms timeout
// plus --immediate skips the preview phase so back-to-back captures stay
// fast; autofocus is forced manual so the lens never hunts mid-print.
func (c *Client) buildArgs(outputPath string) []string {
	args := []string{
		"--width", strconv.Itoa(c.width),
		"--height", strconv.Itoa(c.height),
		"--output", outputPath,
		"--nopreview",
		"--autofocus-mode", "manual",
		"--timeout", "1",
		"--immediate",
	}
	if c.lensPosition > 0 {
		args = append(args, "--lens-position", strconv.FormatFloat(c.lensPosition, 'f', 2, 64))
	}
	args = append(args, c.extraParams...)
	return args
}

func splitParams(params string) []string {
	fields := strings.Fields(params)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	return string(output), err
}

var _ Capturer = (*Client)(nil)
