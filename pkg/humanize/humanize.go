// Package humanize formats durations and byte counts for display.
package humanize

import "fmt"

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	bytesPerUnit     = 1024.0
)

// Duration converts a duration in seconds to HH:MM:SS (or MM:SS when under
// an hour). Zero means the duration is unknown.
func Duration(seconds int) string {
	if seconds == 0 {
		return "Unknown"
	}

	hours := seconds / secondsPerHour
	minutes := (seconds % secondsPerHour) / secondsPerMinute
	seconds %= secondsPerMinute

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}

	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FileSize converts a byte count to a human-readable size with one decimal.
// Zero means the size is unknown.
func FileSize(size int64) string {
	if size == 0 {
		return "Unknown"
	}

	val := float64(size)

	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if val < bytesPerUnit {
			return fmt.Sprintf("%.1f %s", val, unit)
		}

		val /= bytesPerUnit
	}

	return fmt.Sprintf("%.1f TB", val)
}
