package livetimer

import (
	"fmt"
	"time"
)

// FormatHHMMSS renders d as zero-padded HH:MM:SS. Hours are not wrapped at 24
// and sub-second precision is truncated. Negative durations render as 00:00:00.
func FormatHHMMSS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
