package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FallbackName is used when the printer reports no usable job name.
const FallbackName = "unknown"

// Session is one print being recorded.
type Session struct {
	ID        string
	Name      string
	RawName   string
	StartedAt time.Time
	Dir       string

	frameCount int
}

// New creates a session rooted under printsDir and creates its frame
// directory. The directory name combines the start timestamp with the
// sanitized job name so concurrent reprints of the same file never
// collide.
func New(printsDir, rawName string, startedAt time.Time) (*Session, error) {
	name := SanitizeName(rawName)
	dirName := fmt.Sprintf("%s_%s", startedAt.Format("2006-01-02-15-04"), name)
	dir := filepath.Join(printsDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		RawName:   rawName,
		StartedAt: startedAt,
		Dir:       dir,
	}, nil
}

// SanitizeName strips everything except letters, digits, hyphens, and
// underscores so the result is safe as a directory name. An empty
// result falls back to "unknown".
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return FallbackName
	}
	return b.String()
}

// NextFramePath returns the path for the next frame to capture. Frames
// are numbered from zero in capture order.
func (s *Session) NextFramePath() string {
	return filepath.Join(s.Dir, fmt.Sprintf("frame_%05d.jpg", s.frameCount))
}

// RecordFrame marks the frame returned by the last NextFramePath call
// as captured.
func (s *Session) RecordFrame() {
	s.frameCount++
}

// FrameCount reports how many frames have been recorded.
func (s *Session) FrameCount() int {
	return s.frameCount
}

// LatestFramePath returns the most recently captured frame, or "" when
// nothing has been captured yet.
func (s *Session) LatestFramePath() string {
	if s.frameCount == 0 {
		return ""
	}
	return filepath.Join(s.Dir, fmt.Sprintf("frame_%05d.jpg", s.frameCount-1))
}

// Frames lists the captured frame files on disk in capture order.
func (s *Session) Frames() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// VideoPath returns the output path for the assembled timelapse, next
// to the frame directory in the prints root.
func (s *Session) VideoPath() string {
	return filepath.Join(filepath.Dir(s.Dir), filepath.Base(s.Dir)+".mp4")
}

// LogPath returns the output path for the print summary log.
func (s *Session) LogPath() string {
	return filepath.Join(filepath.Dir(s.Dir), filepath.Base(s.Dir)+".log")
}

// Duration reports how long the session has been running.
func (s *Session) Duration(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}
