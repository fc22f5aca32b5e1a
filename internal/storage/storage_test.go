package storage_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"waketube/internal/config"
	"waketube/internal/entity"
	"waketube/internal/errs"
	"waketube/internal/storage"
)

func newTestStore(t *testing.T) storage.Storer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := &config.Config{Session: config.Session{
		TTL:             time.Hour,
		CleanupInterval: time.Hour,
	}}

	return storage.New(t.Context(), log, cfg, nil)
}

func TestGetOrCreateSession(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	first := store.GetOrCreateSession(ctx, "sess-1")
	if first == nil {
		t.Fatal("expected session")
	}

	if first.Download.Status != entity.DownloadStatusIdle {
		t.Errorf("Download.Status = %q, want idle", first.Download.Status)
	}

	second := store.GetOrCreateSession(ctx, "sess-1")
	if second.ID != first.ID || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("expected the same session on repeat calls")
	}
}

func TestGetSessionErrors(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	if _, err := store.GetSession(ctx, ""); !errors.Is(err, errs.ErrSessionIDEmpty) {
		t.Errorf("GetSession(\"\") error = %v, want ErrSessionIDEmpty", err)
	}

	if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, errs.ErrSessionNotFound) {
		t.Errorf("GetSession(missing) error = %v, want ErrSessionNotFound", err)
	}
}

func TestBeginDownloadConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	store.GetOrCreateSession(ctx, "sess-1")

	if err := store.BeginDownload(ctx, "sess-1"); err != nil {
		t.Fatalf("BeginDownload() failed: %v", err)
	}

	if err := store.BeginDownload(ctx, "sess-1"); !errors.Is(err, errs.ErrDownloadInProgress) {
		t.Fatalf("second BeginDownload() error = %v, want ErrDownloadInProgress", err)
	}

	store.FinishDownload(ctx, "sess-1")

	if err := store.BeginDownload(ctx, "sess-1"); err != nil {
		t.Fatalf("BeginDownload() after finish failed: %v", err)
	}
}

func TestSetInfoResetsDownloadState(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	store.GetOrCreateSession(ctx, "sess-1")
	store.UpdateDownload(ctx, "sess-1", entity.DownloadState{
		Status:  entity.DownloadStatusFinished,
		Percent: 100,
	})

	info := &entity.VideoInfo{Title: "clip"}
	if err := store.SetInfo(ctx, "sess-1", info, nil); err != nil {
		t.Fatalf("SetInfo() failed: %v", err)
	}

	sess, err := store.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() failed: %v", err)
	}

	if sess.VideoInfo == nil || sess.VideoInfo.Title != "clip" {
		t.Error("VideoInfo not replaced")
	}

	if sess.Download.Status != entity.DownloadStatusIdle {
		t.Errorf("Download.Status = %q, want idle after new fetch", sess.Download.Status)
	}
}

func TestSetInfoUnknownSession(t *testing.T) {
	store := newTestStore(t)

	err := store.SetInfo(t.Context(), "missing", &entity.VideoInfo{}, nil)
	if !errors.Is(err, errs.ErrSessionNotFound) {
		t.Errorf("SetInfo() error = %v, want ErrSessionNotFound", err)
	}
}

func TestGetSessionReturnsSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	store.GetOrCreateSession(ctx, "sess-1")

	info := &entity.VideoInfo{URL: "https://youtu.be/x", Title: "clip"}
	formats := []entity.FormatRecord{{FormatID: "18", Ext: "mp4"}}

	if err := store.SetInfo(ctx, "sess-1", info, formats); err != nil {
		t.Fatalf("SetInfo() error = %v", err)
	}

	snap, err := store.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}

	// Writes to the snapshot must not reach the store.
	snap.Download.Percent = 50
	snap.VideoInfo.Title = "changed"
	snap.Formats[0].FormatID = "22"

	fresh, err := store.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}

	if fresh.Download.Percent != 0 {
		t.Errorf("Download.Percent = %v, want 0", fresh.Download.Percent)
	}

	if fresh.VideoInfo.Title != "clip" {
		t.Errorf("VideoInfo.Title = %q, want clip", fresh.VideoInfo.Title)
	}

	if fresh.Formats[0].FormatID != "18" {
		t.Errorf("Formats[0].FormatID = %q, want 18", fresh.Formats[0].FormatID)
	}
}

// Exercises the progress-polling pattern: one goroutine updates the
// download state while another reads and marshals the session. Run with
// -race this fails if the store ever hands out live state.
func TestGetSessionConcurrentWithUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	store.GetOrCreateSession(ctx, "sess-1")

	info := &entity.VideoInfo{URL: "https://youtu.be/x", Title: "clip"}
	formats := []entity.FormatRecord{{FormatID: "18", Ext: "mp4"}}

	if err := store.SetInfo(ctx, "sess-1", info, formats); err != nil {
		t.Fatalf("SetInfo() error = %v", err)
	}

	const iterations = 200

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := range iterations {
			store.UpdateDownload(ctx, "sess-1", entity.DownloadState{
				Status:          entity.DownloadStatusDownloading,
				Percent:         float64(i),
				DownloadedBytes: int64(i),
				TotalBytes:      iterations,
			})
		}
	}()

	for range iterations {
		sess, err := store.GetSession(ctx, "sess-1")
		if err != nil {
			t.Errorf("GetSession() error = %v", err)

			break
		}

		if _, err := json.Marshal(sess); err != nil {
			t.Errorf("Marshal() error = %v", err)

			break
		}
	}

	wg.Wait()
}
