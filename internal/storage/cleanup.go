// Package storage keeps per-client sessions in memory and removes them,
// temp directories included, once they expire.
package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"waketube/internal/entity"
)

func (stg *storage) CleanupExpiredSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := stg.log.With(slog.String("action", "cleanup_expired_sessions"), slog.Duration("interval", interval))

	for {
		select {
		case <-ticker.C:
			stg.performCleanup(ctx)
		case <-ctx.Done():
			log.Info("cleanup expired sessions stopped")

			return
		}
	}
}

func (stg *storage) performCleanup(ctx context.Context) {
	log := stg.log
	now := time.Now()

	stg.mu.Lock()
	expired := stg.getExpiredSessions(now)
	stg.mu.Unlock()

	if len(expired) == 0 {
		log.DebugContext(ctx, "no expired sessions found to clean up")

		return
	}

	log.InfoContext(ctx, "about to remove expired sessions", slog.Int("count", len(expired)))

	removedDirs := 0

	for _, sess := range expired {
		if stg.cleanupSession(ctx, sess) {
			removedDirs++
		}
	}

	stg.metrics.RecordCleanup(len(expired), removedDirs)
}

func (stg *storage) getExpiredSessions(now time.Time) []*entity.Session {
	var expired []*entity.Session

	for _, sess := range stg.sessions {
		// A session mid-download is kept for the next sweep.
		if !sess.InProgress && sess.ExpiresAt.Before(now) {
			expired = append(expired, sess)
		}
	}

	return expired
}

func (stg *storage) cleanupSession(ctx context.Context, sess *entity.Session) bool {
	if sess == nil {
		return false
	}

	log := stg.log
	removed := false

	if sess.TempDir != "" {
		if !filepath.IsAbs(sess.TempDir) {
			log.ErrorContext(ctx, "non-absolute temp dir found", slog.String("dir", sess.TempDir))
		} else if err := os.RemoveAll(sess.TempDir); err != nil {
			log.ErrorContext(ctx, "failed to remove temp dir", slog.String("dir", sess.TempDir), slog.Any("error", err))
		} else {
			removed = true

			log.DebugContext(ctx, "temp dir removed", slog.String("dir", sess.TempDir))
		}
	}

	stg.mu.Lock()
	defer stg.mu.Unlock()

	delete(stg.sessions, sess.ID)
	stg.metrics.SetStoredSessions(len(stg.sessions))

	log.DebugContext(ctx, "session cleaned up", slog.String("session_id", sess.ID))

	return removed
}
