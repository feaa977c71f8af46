package deps

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MinFreeBytes is the free-space floor for the prints directory. A
// multi-day print at default settings lands well under this, so
// anything below it means the card is about to fill.
const MinFreeBytes = 500 * 1024 * 1024

// FreeSpace reports the bytes available to unprivileged writes on the
// filesystem holding path.
func FreeSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// CheckDiskSpace returns an error when the prints directory has less
// than MinFreeBytes available.
func CheckDiskSpace(printsDir string) error {
	free, err := FreeSpace(printsDir)
	if err != nil {
		return err
	}
	if free < MinFreeBytes {
		return fmt.Errorf("low disk space in %s: %d MB free, need at least %d MB",
			printsDir, free/(1024*1024), MinFreeBytes/(1024*1024))
	}
	return nil
}
