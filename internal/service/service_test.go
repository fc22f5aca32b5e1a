package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"waketube/internal/config"
	"waketube/internal/download"
	"waketube/internal/entity"
	"waketube/internal/errs"
	"waketube/internal/extractor"
	"waketube/internal/storage"
)

type fakeExtractor struct {
	info *entity.VideoInfo
	err  error
}

func (f *fakeExtractor) Info(_ context.Context, url string) (*entity.VideoInfo, error) {
	if f.err != nil {
		return nil, f.err
	}

	info := *f.info
	info.URL = url

	return &info, nil
}

type fakeDownloader struct {
	err     error
	file    string
	started chan struct{}
	release chan struct{}
}

func (f *fakeDownloader) Download(ctx context.Context, _, _, destDir string, onEvent download.EventFunc) (string, error) {
	if f.started != nil {
		close(f.started)
	}

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if f.err != nil {
		return "", f.err
	}

	onEvent(download.Event{Status: "downloading", DownloadedBytes: 500, TotalBytes: 1000})

	name := f.file
	if name == "" {
		name = "video.mp4"
	}

	path := filepath.Join(destDir, name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		return "", err
	}

	onEvent(download.Event{Status: "finished"})

	return path, nil
}

func testInfo() *entity.VideoInfo {
	return &entity.VideoInfo{
		Title: "clip",
		Formats: []entity.Format{
			{FormatID: "18", Ext: "mp4", VCodec: "avc1", ACodec: "mp4a"},
		},
	}
}

func newTestService(t *testing.T, ext Extractor, dl download.Downloader) Service {
	t.Helper()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := &config.Config{Session: config.Session{
		TTL:             time.Hour,
		CleanupInterval: time.Hour,
	}}

	storer := storage.New(t.Context(), log, cfg, nil)

	return New(log, cfg, ext, dl, extractor.AvailableFormats, storer)
}

func TestFetchInfoInvalidURL(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{info: testInfo()}, &fakeDownloader{})

	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"not a url", "not a url"},
		{"non-youtube", "https://example.com/watch?v=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.FetchInfo(t.Context(), tt.url, "sess-1")
			if !errors.Is(err, errs.ErrInvalidURL) {
				t.Errorf("FetchInfo(%q) error = %v, want ErrInvalidURL", tt.url, err)
			}
		})
	}
}

func TestFetchInfoStoresFormats(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{info: testInfo()}, &fakeDownloader{})

	sess, err := svc.FetchInfo(t.Context(), "https://www.youtube.com/watch?v=abc", "sess-1")
	if err != nil {
		t.Fatalf("FetchInfo() failed: %v", err)
	}

	if sess.VideoInfo == nil || sess.VideoInfo.Title != "clip" {
		t.Fatalf("unexpected video info: %+v", sess.VideoInfo)
	}

	if len(sess.Formats) != 1 || sess.Formats[0].FormatID != "18" {
		t.Fatalf("unexpected formats: %+v", sess.Formats)
	}
}

func TestDownloadUnknownFormat(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{info: testInfo()}, &fakeDownloader{})

	if _, err := svc.FetchInfo(t.Context(), "https://youtu.be/abc", "sess-1"); err != nil {
		t.Fatalf("FetchInfo() failed: %v", err)
	}

	_, err := svc.Download(t.Context(), "sess-1", "999")
	if !errors.Is(err, errs.ErrUnknownFormat) {
		t.Errorf("Download() error = %v, want ErrUnknownFormat", err)
	}
}

func TestDownloadConflict(t *testing.T) {
	dl := &fakeDownloader{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newTestService(t, &fakeExtractor{info: testInfo()}, dl)
	ctx := t.Context()

	if _, err := svc.FetchInfo(ctx, "https://youtu.be/abc", "sess-1"); err != nil {
		t.Fatalf("FetchInfo() failed: %v", err)
	}

	done := make(chan error, 1)

	go func() {
		_, err := svc.Download(ctx, "sess-1", "18")
		done <- err
	}()

	<-dl.started

	if _, err := svc.Download(ctx, "sess-1", "18"); !errors.Is(err, errs.ErrDownloadInProgress) {
		t.Errorf("concurrent Download() error = %v, want ErrDownloadInProgress", err)
	}

	close(dl.release)

	if err := <-done; err != nil {
		t.Fatalf("first Download() failed: %v", err)
	}
}

func TestDownloadCleansUpOnFailure(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{info: testInfo()}, &fakeDownloader{err: errors.New("network down")})
	ctx := t.Context()

	if _, err := svc.FetchInfo(ctx, "https://youtu.be/abc", "sess-1"); err != nil {
		t.Fatalf("FetchInfo() failed: %v", err)
	}

	if _, err := svc.Download(ctx, "sess-1", "18"); err == nil {
		t.Fatal("expected download error")
	}

	sess, err := svc.Session(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Session() failed: %v", err)
	}

	if sess.InProgress {
		t.Error("session still marked in progress after failure")
	}

	if sess.TempDir != "" {
		t.Errorf("temp dir not released: %q", sess.TempDir)
	}

	if sess.Download.Status != entity.DownloadStatusError {
		t.Errorf("Download.Status = %q, want error", sess.Download.Status)
	}
}

func TestDownloadAndCleanup(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{info: testInfo()}, &fakeDownloader{})
	ctx := t.Context()

	if _, err := svc.FetchInfo(ctx, "https://youtu.be/abc", "sess-1"); err != nil {
		t.Fatalf("FetchInfo() failed: %v", err)
	}

	path, err := svc.Download(ctx, "sess-1", "18")
	if err != nil {
		t.Fatalf("Download() failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("downloaded file missing before cleanup: %v", err)
	}

	sess, err := svc.Session(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Session() failed: %v", err)
	}

	if sess.Download.Percent != 100 {
		t.Errorf("Download.Percent = %v, want 100", sess.Download.Percent)
	}

	tempDir := sess.TempDir
	if tempDir == "" {
		t.Fatal("expected a temp dir while the file awaits streaming")
	}

	svc.Cleanup(ctx, "sess-1")

	if _, err := os.Stat(tempDir); !os.IsNotExist(err) {
		t.Errorf("temp dir still present after cleanup: %v", err)
	}

	sess, err = svc.Session(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Session() failed: %v", err)
	}

	if sess.InProgress {
		t.Error("session still in progress after cleanup")
	}
}
