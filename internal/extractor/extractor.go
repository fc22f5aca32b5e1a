// Package extractor fetches video metadata through yt-dlp without
// downloading any media.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"waketube/internal/config"
	"waketube/internal/entity"
	"waketube/internal/errs"
	"waketube/internal/observability"
)

// Client wraps the yt-dlp metadata invocation.
type Client struct {
	log     *slog.Logger
	cfg     *config.Config
	metrics *observability.Metrics
}

// New creates a metadata extraction client.
func New(log *slog.Logger, cfg *config.Config, metrics *observability.Metrics) *Client {
	return &Client{
		log:     log.With(slog.String("package", "extractor")),
		cfg:     cfg,
		metrics: metrics,
	}
}

// Info fetches metadata for url. The raw format list is carried along on
// the returned VideoInfo for later organization.
func (c *Client) Info(ctx context.Context, url string) (*entity.VideoInfo, error) {
	command := ytdlp.New().
		Quiet().
		NoWarnings().
		SkipDownload().
		DumpSingleJSON().
		NoPlaylist().
		CacheDir(c.cfg.Dir.Cache)

	if c.cfg.Ytdlp.Proxy != "" {
		command = command.Proxy(c.cfg.Ytdlp.Proxy)
	}

	if c.cfg.Dir.CookieFile != "" {
		command = command.Cookies(c.cfg.Dir.CookieFile)
	}

	res, err := command.Run(ctx, url)
	if err != nil {
		c.log.ErrorContext(ctx, "ytdlp info run", slog.String("url", url), slog.Any("error", err))
		c.metrics.RecordInfoRequest("error")

		return nil, fmt.Errorf("%w: %w", errs.ErrInfoFetch, err)
	}

	info, err := ParseInfo([]byte(strings.TrimSpace(res.Stdout)))
	if err != nil {
		c.metrics.RecordInfoRequest("error")

		return nil, fmt.Errorf("%w: %w", errs.ErrInfoFetch, err)
	}

	if info.URL == "" {
		info.URL = url
	}

	c.metrics.RecordInfoRequest("ok")
	c.log.InfoContext(ctx, "info fetched", slog.Any("video_info", info))

	return info, nil
}
