package storage_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"waketube/internal/config"
	"waketube/internal/errs"
	"waketube/internal/storage"
)

func TestCleanupExpiredSessions(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		log := slog.New(slog.NewTextHandler(os.Stdout, nil))

		cfg := &config.Config{Session: config.Session{
			TTL:             time.Minute,
			CleanupInterval: time.Minute,
		}}

		store := storage.New(ctx, log, cfg, nil)

		tmpDir := filepath.Join(t.TempDir(), "youtube_download_old")
		if err := os.MkdirAll(tmpDir, 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(filepath.Join(tmpDir, "video.mp4"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		store.GetOrCreateSession(ctx, "expired")

		if err := store.SetTempDir(ctx, "expired", tmpDir); err != nil {
			t.Fatalf("SetTempDir() failed: %v", err)
		}

		// One sweep past the TTL removes the idle session and its dir.
		time.Sleep(2*time.Minute + time.Second)
		synctest.Wait()

		if _, err := store.GetSession(ctx, "expired"); !errors.Is(err, errs.ErrSessionNotFound) {
			t.Errorf("GetSession(expired) error = %v, want ErrSessionNotFound", err)
		}

		if _, err := os.Stat(tmpDir); !os.IsNotExist(err) {
			t.Errorf("temp dir still present: %v", err)
		}
	})
}

func TestCleanupKeepsActiveDownloads(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		log := slog.New(slog.NewTextHandler(os.Stdout, nil))

		cfg := &config.Config{Session: config.Session{
			TTL:             time.Minute,
			CleanupInterval: time.Minute,
		}}

		store := storage.New(ctx, log, cfg, nil)

		store.GetOrCreateSession(ctx, "busy")

		if err := store.BeginDownload(ctx, "busy"); err != nil {
			t.Fatalf("BeginDownload() failed: %v", err)
		}

		time.Sleep(3 * time.Minute)
		synctest.Wait()

		if _, err := store.GetSession(ctx, "busy"); err != nil {
			t.Errorf("in-progress session was cleaned up: %v", err)
		}
	})
}
