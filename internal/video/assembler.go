package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lapse/internal/logging"
	"lapse/internal/services"
	"lapse/internal/services/ffmpeg"
)

// ErrNoFrames is returned when the frame directory holds nothing to
// encode.
var ErrNoFrames = errors.New("no frames to encode")

// Assembler turns a directory of captured frames into a single video.
type Assembler struct {
	encoder   ffmpeg.Encoder
	fps       int
	batchSize int
	logger    *slog.Logger
}

// NewAssembler constructs an assembler. Frames are encoded in batches
// of batchSize; sequences at or below the batch size take the direct
// single-pass path.
func NewAssembler(encoder ffmpeg.Encoder, fps, batchSize int, logger *slog.Logger) (*Assembler, error) {
	if encoder == nil {
		return nil, errors.New("assembler requires an encoder")
	}
	if fps <= 0 {
		return nil, services.Wrap(services.ErrValidation, "video", "assembler", fmt.Sprintf("invalid fps %d", fps), nil)
	}
	if batchSize <= 0 {
		return nil, services.Wrap(services.ErrValidation, "video", "assembler", fmt.Sprintf("invalid batch size %d", batchSize), nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assembler{
		encoder:   encoder,
		fps:       fps,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Assemble encodes every frame_*.jpg under frameDir into outputPath.
// On failure no partial output file is left behind; the frames are
// untouched either way so a failed encode can be retried by hand.
func (a *Assembler) Assemble(ctx context.Context, frameDir, outputPath string) error {
	frames, err := listFrames(frameDir)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return ErrNoFrames
	}

	if len(frames) <= a.batchSize {
		a.logger.Info("encoding timelapse",
			logging.Int("frames", len(frames)),
			logging.String("output", outputPath))
		if err := a.encoder.EncodeGlob(ctx, frameDir, outputPath); err != nil {
			removeQuietly(outputPath)
			return err
		}
		return nil
	}
	return a.assembleBatched(ctx, frames, outputPath)
}

func (a *Assembler) assembleBatched(ctx context.Context, frames []string, outputPath string) error {
	workspace, err := NewWorkspace(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := workspace.Close(); err != nil {
			a.logger.Warn("workspace cleanup failed", logging.Error(err))
		}
	}()

	numBatches := (len(frames) + a.batchSize - 1) / a.batchSize
	a.logger.Info("encoding timelapse in batches",
		logging.Int("frames", len(frames)),
		logging.Int("batches", numBatches),
		logging.String("output", outputPath))

	segments := make([]string, 0, numBatches)
	for batch := 0; batch < numBatches; batch++ {
		start := batch * a.batchSize
		end := start + a.batchSize
		if end > len(frames) {
			end = len(frames)
		}

		listPath := workspace.BatchListPath(batch)
		if err := writeFrameList(listPath, frames[start:end], a.fps); err != nil {
			return err
		}

		segmentPath := workspace.SegmentPath(batch)
		a.logger.Info("encoding segment",
			logging.Int("batch", batch+1),
			logging.Int("total", numBatches),
			logging.Int("frames", end-start))
		if err := a.encoder.EncodeConcat(ctx, listPath, segmentPath); err != nil {
			return fmt.Errorf("encode segment %d: %w", batch, err)
		}
		segments = append(segments, segmentPath)
	}

	concatList := workspace.ConcatListPath()
	if err := writeSegmentList(concatList, segments); err != nil {
		return err
	}
	if err := a.encoder.Concat(ctx, concatList, outputPath); err != nil {
		removeQuietly(outputPath)
		return fmt.Errorf("concatenate segments: %w", err)
	}
	return nil
}

// writeFrameList emits a concat-demuxer input list for an image
// sequence. Every frame carries an explicit duration; the demuxer
// ignores the last entry's duration, so the final frame is repeated
// once without one.
func writeFrameList(path string, frames []string, fps int) error {
	var b strings.Builder
	duration := 1.0 / float64(fps)
	for _, frame := range frames {
		abs, err := filepath.Abs(frame)
		if err != nil {
			return fmt.Errorf("resolve frame path: %w", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", abs)
		fmt.Fprintf(&b, "duration %.6f\n", duration)
	}
	if len(frames) > 0 {
		abs, err := filepath.Abs(frames[len(frames)-1])
		if err != nil {
			return fmt.Errorf("resolve frame path: %w", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", abs)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write frame list: %w", err)
	}
	return nil
}

func writeSegmentList(path string, segments []string) error {
	var b strings.Builder
	for _, segment := range segments {
		abs, err := filepath.Abs(segment)
		if err != nil {
			return fmt.Errorf("resolve segment path: %w", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", abs)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write segment list: %w", err)
	}
	return nil
}

func listFrames(frameDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(frameDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// removeQuietly discards a possibly partial output file. A missing
// file is fine; ffmpeg may have failed before creating it.
func removeQuietly(path string) {
	_ = os.Remove(path)
}
