package report

import (
	"fmt"
	"time"

	"lapse/internal/services/printer"
)

// Summary collects everything known about a finished print session.
type Summary struct {
	Name            string
	RawName         string
	StartedAt       time.Time
	EndedAt         time.Time
	Duration        time.Duration
	FrameCount      int
	CaptureInterval time.Duration
	VideoPath       string
	Job             *printer.Job
}

// FormatDuration renders a duration as "2h 5m", rounding seconds away.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// estimatedPrintTime pulls the slicer's time estimate from job
// metadata, in seconds. Zero means no estimate was present.
func (s *Summary) estimatedPrintTime() int64 {
	if s.Job == nil || s.Job.File.Meta == nil {
		return 0
	}
	for _, key := range []string{"estimated printing time (normal mode)", "estimated_print_time"} {
		if raw, ok := s.Job.File.Meta[key]; ok {
			switch v := raw.(type) {
			case float64:
				return int64(v)
			case int64:
				return v
			case int:
				return int64(v)
			}
		}
	}
	return 0
}
