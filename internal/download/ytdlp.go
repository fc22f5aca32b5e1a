package download

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"waketube/internal/config"
	"waketube/internal/consts"
	"waketube/internal/errs"
	"waketube/internal/observability"
	"waketube/pkg/calc"
)

var (
	reFilepath = regexp.MustCompile(`(?i)^[^\{\[\n].*\.[a-z0-9]{1,6}$`)

	// changing this breaks ParseOutputPath().
	printAfterMove = "after_move:filepath"
)

// YTdlp downloads media through the yt-dlp binary.
type YTdlp struct {
	log     *slog.Logger
	cfg     *config.Config
	metrics *observability.Metrics
}

func NewYTdlp(log *slog.Logger, cfg *config.Config, metrics *observability.Metrics) *YTdlp {
	return &YTdlp{
		log:     log.With(slog.String("package", "download"), slog.String("downloader", consts.DownloaderYTdlp)),
		cfg:     cfg,
		metrics: metrics,
	}
}

// Download fetches the selected format into destDir. The finished file
// path is recovered from yt-dlp's own after-move print, so renames done
// by postprocessors are reflected.
func (d *YTdlp) Download(ctx context.Context, url, formatID, destDir string, onEvent EventFunc) (string, error) {
	d.metrics.RecordDownloadStarted()

	stop := d.metrics.DownloadTimer()
	defer stop()

	var downloaded int64

	progressFn := func(prog ytdlp.ProgressUpdate) {
		downloaded = int64(prog.DownloadedBytes)
		d.log.DebugContext(ctx, "ytdlp progress",
			slog.String("status", string(prog.Status)),
			slog.Int("progress", calc.Progress(int64(prog.DownloadedBytes), int64(prog.TotalBytes))))
		onEvent(Event{
			Status:          string(prog.Status),
			DownloadedBytes: int64(prog.DownloadedBytes),
			TotalBytes:      int64(prog.TotalBytes),
			Started:         prog.Started,
		})
	}

	command := ytdlp.New().
		CacheDir(d.cfg.Dir.Cache).
		Format(formatID).
		NoPlaylist().
		Print(printAfterMove).
		ProgressFunc(defaultProgressFreq, progressFn).
		Output(filepath.Join(destDir, "%(title)s.%(ext)s"))

	if d.cfg.Ytdlp.Proxy != "" {
		command = command.Proxy(d.cfg.Ytdlp.Proxy)
	}

	if d.cfg.Dir.CookieFile != "" {
		command = command.Cookies(d.cfg.Dir.CookieFile)
	}

	res, err := command.Run(ctx, url)
	if err != nil {
		d.log.ErrorContext(ctx, "ytdlp run",
			slog.String("url", url),
			slog.String("format_id", formatID),
			slog.String("reason", classifyDownloadError(err)),
			slog.Any("error", err))
		d.metrics.RecordDownloadFailed()

		return "", fmt.Errorf("%w: %w", errs.ErrDownloadFailed, err)
	}

	path := ParseOutputPath(res.Stdout)
	if path == "" {
		d.metrics.RecordDownloadFailed()

		return "", errs.ErrFileNotFound
	}

	d.metrics.RecordDownloadCompleted(downloaded)
	onEvent(Event{Status: "finished"})

	return path, nil
}

// ParseOutputPath extracts the final file path from yt-dlp stdout. The
// after-move print is the last path-looking line; with one URL per run
// the last match wins.
func ParseOutputPath(stdout string) string {
	scanner := bufio.NewScanner(strings.NewReader(stdout))

	var path string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if reFilepath.MatchString(line) {
			path = line
		}
	}

	return path
}
