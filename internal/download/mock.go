package download

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"waketube/internal/consts"
)

type mock struct {
	log *slog.Logger
}

// NewMock returns a downloader that simulates a short download and
// writes a stub file into destDir. Used in tests and local runs without
// the yt-dlp binary.
func NewMock(log *slog.Logger) Downloader {
	return &mock{log: log.With(slog.String("package", "download"), slog.String("downloader", consts.DownloaderMock))}
}

func (m *mock) Download(ctx context.Context, url, formatID, destDir string, onEvent EventFunc) (string, error) {
	m.log.InfoContext(ctx, "simulating download",
		slog.String("url", url), slog.String("format_id", formatID))

	if err := simulateDownload(ctx, consts.DefaultSimulateTime, onEvent); err != nil {
		return "", err
	}

	path := filepath.Join(destDir, "mock.mp4")
	if err := os.WriteFile(path, []byte("mock"), 0o644); err != nil {
		return "", err
	}

	onEvent(Event{Status: "finished"})

	return path, nil
}

func simulateDownload(ctx context.Context, duration time.Duration, onEvent EventFunc) error {
	const steps = 10

	const totalBytes = 1000

	ticker := time.NewTicker(duration / steps)
	defer ticker.Stop()

	started := time.Now()

	for step := range steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			onEvent(Event{
				Status:          "downloading",
				DownloadedBytes: int64(step+1) * totalBytes / steps,
				TotalBytes:      totalBytes,
				Started:         started,
			})
		}
	}

	return nil
}
