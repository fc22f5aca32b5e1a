// Package calc provides transfer progress arithmetic.
package calc

import (
	"math"
	"time"
)

// Percent returns the completed percentage for a byte pair. Unknown totals
// yield 0.
func Percent(downloaded, total int64) float64 {
	if total > 0 {
		return float64(downloaded) / float64(total) * 100
	}

	return 0
}

// Progress is Percent rounded to a whole number.
func Progress(downloaded, total int64) int {
	return int(math.Round(Percent(downloaded, total)))
}

// ETA estimates the remaining transfer time from the bytes moved since
// started. Unknown totals or an empty transfer yield 0.
func ETA(downloaded, total int64, started time.Time) time.Duration {
	if total <= 0 || downloaded <= 0 {
		return 0
	}

	elapsed := time.Since(started)

	return time.Duration(float64(elapsed) * (float64(total)/float64(downloaded) - 1))
}
