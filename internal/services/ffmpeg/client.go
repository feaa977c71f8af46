package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lapse/internal/config"
	"lapse/internal/services"
)

// Encoder defines the behaviour required by the video assembler.
type Encoder interface {
	EncodeGlob(ctx context.Context, frameDir, outputPath string) error
	EncodeConcat(ctx context.Context, listPath, outputPath string) error
	Concat(ctx context.Context, listPath, outputPath string) error
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

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary        string
	fps           int
	quality       int
	rotation      int
	encodeTimeout time.Duration
	exec          Executor
}

// New constructs an ffmpeg client from configuration.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("ffmpeg client requires config")
	}
	client := &Client{
		binary:        cfg.FFmpegBinary(),
		fps:           cfg.Video.FPS,
		quality:       cfg.Video.Quality,
		rotation:      cfg.Camera.Rotation,
		encodeTimeout: time.Duration(cfg.Video.EncodeTimeout) * time.Second,
		exec:          commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// EncodeGlob encodes every frame_*.jpg in frameDir directly into
// outputPath at the configured frame rate.
func (c *Client) EncodeGlob(ctx context.Context, frameDir, outputPath string) error {
	args := []string{
		"-y",
		"-framerate", strconv.Itoa(c.fps),
		"-pattern_type", "glob",
		"-i", filepath.Join(frameDir, "frame_*.jpg"),
	}
	args = appendRotation(args, c.rotation)
	args = append(args,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(c.quality),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outputPath,
	)
	return c.run(ctx, "encode", args)
}

// EncodeConcat encodes the frames listed in a concat-demuxer file into
// a video segment.
func (c *Client) EncodeConcat(ctx context.Context, listPath, outputPath string) error {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
	}
	args = appendRotation(args, c.rotation)
	args = append(args,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(c.quality),
		"-pix_fmt", "yuv420p",
		outputPath,
	)
	return c.run(ctx, "encode segment", args)
}

// Concat joins previously encoded segments without re-encoding.
func (c *Client) Concat(ctx context.Context, listPath, outputPath string) error {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		outputPath,
	}
	return c.run(ctx, "concat segments", args)
}

func (c *Client) run(ctx context.Context, operation string, args []string) error {
	runCtx := ctx
	if c.encodeTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.encodeTimeout)
		defer cancel()
	}

	output, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "ffmpeg", operation,
				fmt.Sprintf("ffmpeg timed out after %s", c.encodeTimeout), err)
		}
		return services.Wrap(services.ErrExternalTool, "ffmpeg", operation, lastLines(output, 5), err)
	}
	return nil
}

// RotationFilter maps a rotation in degrees to an ffmpeg video filter.
// Only right-angle rotations are supported; 0 means no filter.
func RotationFilter(rotation int) string {
	switch rotation {
	case 90:
		return "transpose=1"
	case 180:
		return "transpose=1,transpose=1"
	case 270:
		return "transpose=2"
	default:
		return ""
	}
}

func appendRotation(args []string, rotation int) []string {
	if filter := RotationFilter(rotation); filter != "" {
		args = append(args, "-vf", filter)
	}
	return args
}

// lastLines trims ffmpeg's verbose output to the tail that actually
// explains the failure.
func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	return string(output), err
}

var _ Encoder = (*Client)(nil)
