package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"waketube/internal/config"
	"waketube/internal/entity"
	"waketube/internal/errs"
	"waketube/internal/observability"
)

// Storer defines the interface for session storage operations.
type Storer interface {
	// GetOrCreateSession and GetSession return snapshots, not the
	// stored session: callers may read them while a download mutates
	// the session behind the lock.
	GetOrCreateSession(ctx context.Context, id string) *entity.Session
	GetSession(ctx context.Context, id string) (*entity.Session, error)

	// SetInfo replaces the session's video info and format list,
	// discarding any prior fetch.
	SetInfo(ctx context.Context, id string, info *entity.VideoInfo, formats []entity.FormatRecord) error

	// BeginDownload marks the session busy. It fails with
	// ErrDownloadInProgress when a download is already running.
	BeginDownload(ctx context.Context, id string) error
	FinishDownload(ctx context.Context, id string)
	SetTempDir(ctx context.Context, id, dir string) error
	UpdateDownload(ctx context.Context, id string, state entity.DownloadState)

	CleanupExpiredSessions(ctx context.Context, interval time.Duration)
}

type storage struct {
	log     *slog.Logger
	cfg     *config.Config
	metrics *observability.Metrics

	mu       sync.RWMutex
	sessions map[string]*entity.Session // session ID : session
}

// New creates an in-memory session store and starts its cleanup loop.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config, metrics *observability.Metrics) Storer {
	stg := &storage{
		log:      log.With(slog.String("package", "storage")),
		cfg:      cfg,
		metrics:  metrics,
		sessions: make(map[string]*entity.Session),
	}

	go stg.CleanupExpiredSessions(ctx, cfg.Session.CleanupInterval)

	return stg
}

func (stg *storage) GetOrCreateSession(ctx context.Context, id string) *entity.Session {
	stg.mu.Lock()
	defer stg.mu.Unlock()

	if sess, ok := stg.sessions[id]; ok {
		sess.ExpiresAt = time.Now().Add(stg.cfg.Session.TTL)

		return sess.Clone()
	}

	now := time.Now()
	sess := &entity.Session{
		ID:        id,
		Download:  entity.DownloadState{Status: entity.DownloadStatusIdle},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(stg.cfg.Session.TTL),
	}

	stg.sessions[id] = sess
	stg.metrics.SetStoredSessions(len(stg.sessions))

	stg.log.DebugContext(ctx, "session created", slog.String("session_id", id))

	return sess.Clone()
}

func (stg *storage) GetSession(_ context.Context, id string) (*entity.Session, error) {
	if id == "" {
		return nil, errs.ErrSessionIDEmpty
	}

	stg.mu.RLock()
	defer stg.mu.RUnlock()

	sess, ok := stg.sessions[id]
	if !ok {
		return nil, errs.ErrSessionNotFound
	}

	return sess.Clone(), nil
}

func (stg *storage) SetInfo(ctx context.Context, id string, info *entity.VideoInfo, formats []entity.FormatRecord) error {
	stg.mu.Lock()
	defer stg.mu.Unlock()

	sess, ok := stg.sessions[id]
	if !ok {
		return errs.ErrSessionNotFound
	}

	sess.VideoInfo = info
	sess.Formats = formats
	sess.Download = entity.DownloadState{Status: entity.DownloadStatusIdle}
	sess.UpdatedAt = time.Now()
	sess.ExpiresAt = time.Now().Add(stg.cfg.Session.TTL)

	stg.log.DebugContext(ctx, "session info set", "session", sess)

	return nil
}

func (stg *storage) BeginDownload(_ context.Context, id string) error {
	stg.mu.Lock()
	defer stg.mu.Unlock()

	sess, ok := stg.sessions[id]
	if !ok {
		return errs.ErrSessionNotFound
	}

	if sess.InProgress {
		return errs.ErrDownloadInProgress
	}

	sess.InProgress = true
	sess.Download = entity.DownloadState{Status: entity.DownloadStatusDownloading, Message: "Downloading..."}
	sess.UpdatedAt = time.Now()

	return nil
}

func (stg *storage) FinishDownload(_ context.Context, id string) {
	stg.mu.Lock()
	defer stg.mu.Unlock()

	sess, ok := stg.sessions[id]
	if !ok {
		return
	}

	sess.InProgress = false
	sess.TempDir = ""
	sess.UpdatedAt = time.Now()
}

func (stg *storage) SetTempDir(_ context.Context, id, dir string) error {
	stg.mu.Lock()
	defer stg.mu.Unlock()

	sess, ok := stg.sessions[id]
	if !ok {
		return errs.ErrSessionNotFound
	}

	sess.TempDir = dir
	sess.UpdatedAt = time.Now()

	return nil
}

func (stg *storage) UpdateDownload(ctx context.Context, id string, state entity.DownloadState) {
	stg.mu.Lock()
	defer stg.mu.Unlock()

	sess, ok := stg.sessions[id]
	if !ok {
		stg.log.WarnContext(ctx, "update download: unknown session", slog.String("session_id", id))

		return
	}

	sess.Download = state
	sess.UpdatedAt = time.Now()
}
