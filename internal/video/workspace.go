package video

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is a hidden scratch directory that lives next to the final
// output for the duration of a batched assembly.
type Workspace struct {
	dir string
}

// NewWorkspace creates the scratch directory for the given output path.
// The name embeds the output stem so concurrent assemblies for
// different videos never collide. Leftovers from a previous crashed run
// with the same stem are removed first.
func NewWorkspace(outputPath string) (*Workspace, error) {
	stem := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	dir := filepath.Join(filepath.Dir(outputPath), ".tmp_"+stem)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear stale workspace: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// SegmentPath returns the path for the numbered video segment.
func (w *Workspace) SegmentPath(index int) string {
	return filepath.Join(w.dir, fmt.Sprintf("segment_%03d.mp4", index))
}

// BatchListPath returns the path for the numbered batch frame list.
func (w *Workspace) BatchListPath(index int) string {
	return filepath.Join(w.dir, fmt.Sprintf("batch_%03d_files.txt", index))
}

// ConcatListPath returns the path for the final segment list.
func (w *Workspace) ConcatListPath() string {
	return filepath.Join(w.dir, "concat_list.txt")
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return nil
}
