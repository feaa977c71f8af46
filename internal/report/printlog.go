package report

import (
	"fmt"
	"os"
	"strings"
)

const logSeparator = "=================================================="

// WritePrintLog writes a plaintext summary of the finished print next
// to the timelapse video.
func WritePrintLog(path string, summary *Summary) error {
	var b strings.Builder
	b.WriteString("Lapse Print Log\n")
	b.WriteString(logSeparator + "\n\n")
	fmt.Fprintf(&b, "File Name: %s\n", summary.RawName)
	fmt.Fprintf(&b, "Start Time: %s\n", summary.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "End Time: %s\n", summary.EndedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Duration: %s\n", FormatDuration(summary.Duration))
	fmt.Fprintf(&b, "Frames Captured: %d\n", summary.FrameCount)
	fmt.Fprintf(&b, "Capture Interval: %d seconds\n", int(summary.CaptureInterval.Seconds()))

	if job := summary.Job; job != nil {
		b.WriteString("\n" + logSeparator + "\n")
		b.WriteString("Job Metadata\n")
		b.WriteString(logSeparator + "\n\n")
		fmt.Fprintf(&b, "Display Name: %s\n", orNA(job.File.DisplayName))
		fmt.Fprintf(&b, "File Name: %s\n", orNA(job.File.Name))
		fmt.Fprintf(&b, "File Path: %s\n", orNA(job.File.Path))
		if job.File.Size > 0 {
			fmt.Fprintf(&b, "File Size: %.2f MB\n", float64(job.File.Size)/(1024*1024))
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write print log: %w", err)
	}
	return nil
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}
