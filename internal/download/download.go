// Package download runs media downloads through yt-dlp and tracks
// their progress.
package download

import (
	"context"
	"errors"
	"time"
)

const defaultProgressFreq = 500 * time.Millisecond

// EventFunc receives progress events while a download runs.
type EventFunc func(ev Event)

// Downloader fetches the stream identified by formatID into destDir and
// returns the absolute path of the finished file.
type Downloader interface {
	Download(ctx context.Context, url, formatID, destDir string, onEvent EventFunc) (string, error)
}

func classifyDownloadError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "download"
	}
}
