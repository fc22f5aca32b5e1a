// Package service coordinates metadata fetches and downloads on top of
// the session store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"waketube/internal/config"
	"waketube/internal/download"
	"waketube/internal/entity"
	"waketube/internal/errs"
	"waketube/internal/storage"
	"waketube/pkg/urls"
	"waketube/pkg/yturl"
)

// Extractor fetches video metadata.
type Extractor interface {
	Info(ctx context.Context, url string) (*entity.VideoInfo, error)
}

// Service is the application core used by the HTTP delivery layer.
type Service interface {
	// FetchInfo validates url, fetches its metadata and stores the
	// organized format list on the session.
	FetchInfo(ctx context.Context, rawURL, sessionID string) (*entity.Session, error)

	// Download fetches the chosen format into a fresh temp dir and
	// returns the finished file path. The caller owns the temp dir and
	// must release it through Cleanup.
	Download(ctx context.Context, sessionID, formatID string) (string, error)

	// Cleanup removes the session's temp dir and marks it idle.
	Cleanup(ctx context.Context, sessionID string)

	Session(ctx context.Context, sessionID string) (*entity.Session, error)
}

// Organizer turns a raw format list into display records.
type Organizer func(info *entity.VideoInfo) []entity.FormatRecord

type service struct {
	log        *slog.Logger
	cfg        *config.Config
	extractor  Extractor
	downloader download.Downloader
	organize   Organizer
	storer     storage.Storer
}

func New(log *slog.Logger,
	cfg *config.Config,
	extractor Extractor,
	downloader download.Downloader,
	organize Organizer,
	storer storage.Storer,
) Service {
	return &service{
		log:        log.With(slog.String("package", "service")),
		cfg:        cfg,
		extractor:  extractor,
		downloader: downloader,
		organize:   organize,
		storer:     storer,
	}
}

func (svc *service) FetchInfo(ctx context.Context, rawURL, sessionID string) (*entity.Session, error) {
	if sessionID == "" {
		return nil, errs.ErrSessionIDEmpty
	}

	url := urls.Normalize(rawURL)
	if url == "" || !yturl.IsYouTubeURL(url) {
		return nil, errs.ErrInvalidURL
	}

	sess := svc.storer.GetOrCreateSession(ctx, sessionID)

	info, err := svc.extractor.Info(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch info: %w", err)
	}

	if err := svc.storer.SetInfo(ctx, sess.ID, info, svc.organize(info)); err != nil {
		return nil, fmt.Errorf("store info: %w", err)
	}

	return svc.storer.GetOrCreateSession(ctx, sessionID), nil
}

func (svc *service) Download(ctx context.Context, sessionID, formatID string) (string, error) {
	sess, err := svc.storer.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if sess.VideoInfo == nil {
		return "", errs.ErrUnknownFormat
	}

	if !svc.knownFormat(sess, formatID) {
		return "", errs.ErrUnknownFormat
	}

	if err := svc.storer.BeginDownload(ctx, sessionID); err != nil {
		return "", err
	}

	tempDir, err := os.MkdirTemp("", "youtube_download_")
	if err != nil {
		svc.storer.FinishDownload(ctx, sessionID)

		return "", fmt.Errorf("create temp dir: %w", err)
	}

	if err := svc.storer.SetTempDir(ctx, sessionID, tempDir); err != nil {
		svc.removeDir(ctx, tempDir)
		svc.storer.FinishDownload(ctx, sessionID)

		return "", err
	}

	tracker := download.NewTracker()
	onEvent := func(ev download.Event) {
		tracker.Apply(ev)
		svc.storer.UpdateDownload(ctx, sessionID, tracker.State())
	}

	path, err := svc.downloader.Download(ctx, sess.VideoInfo.URL, formatID, tempDir, onEvent)
	if err != nil {
		tracker.Fail(err)
		svc.storer.UpdateDownload(ctx, sessionID, tracker.State())
		svc.Cleanup(ctx, sessionID)

		return "", err
	}

	if _, err := os.Stat(path); err != nil {
		tracker.Fail(errs.ErrFileNotFound)
		svc.storer.UpdateDownload(ctx, sessionID, tracker.State())
		svc.Cleanup(ctx, sessionID)

		return "", errs.ErrFileNotFound
	}

	svc.log.InfoContext(ctx, "download finished",
		slog.String("session_id", sessionID),
		slog.String("format_id", formatID),
		slog.String("path", path))

	return path, nil
}

func (svc *service) Cleanup(ctx context.Context, sessionID string) {
	sess, err := svc.storer.GetSession(ctx, sessionID)
	if err != nil {
		return
	}

	if sess.TempDir != "" {
		svc.removeDir(ctx, sess.TempDir)
	}

	svc.storer.FinishDownload(ctx, sessionID)
}

func (svc *service) Session(ctx context.Context, sessionID string) (*entity.Session, error) {
	return svc.storer.GetSession(ctx, sessionID)
}

func (svc *service) knownFormat(sess *entity.Session, formatID string) bool {
	if formatID == "" {
		return false
	}

	for _, f := range sess.Formats {
		if f.FormatID == formatID {
			return true
		}
	}

	return false
}

func (svc *service) removeDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		svc.log.ErrorContext(ctx, "failed to remove temp dir", slog.String("dir", dir), slog.Any("error", err))
	}
}
