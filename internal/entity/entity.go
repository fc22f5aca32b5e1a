// Package entity defines the core entities used in the application.
package entity

import (
	"log/slog"
	"slices"
	"time"
)

// DownloadStatus represents the state of a session's download.
type DownloadStatus string

const (
	// DownloadStatusIdle indicates that no download has been started yet.
	DownloadStatusIdle DownloadStatus = "idle"
	// DownloadStatusDownloading indicates that a download is in progress.
	DownloadStatusDownloading DownloadStatus = "downloading"
	// DownloadStatusFinished indicates that the download completed successfully.
	DownloadStatusFinished DownloadStatus = "finished"
	// DownloadStatusError indicates that the download failed.
	DownloadStatusError DownloadStatus = "error"
)

// FormatType classifies an organized format record.
type FormatType string

const (
	// FormatTypeVideo is a stream with both video and audio codecs.
	FormatTypeVideo FormatType = "video"
	// FormatTypeAudio is an audio-only stream.
	FormatTypeAudio FormatType = "audio"
)

// Format is one raw entry of the extraction engine's format list. Optional
// numeric fields stay pointers so absent and zero stay distinguishable.
type Format struct {
	FormatID   string   `json:"format_id"`
	Ext        string   `json:"ext"`
	VCodec     string   `json:"vcodec"`
	ACodec     string   `json:"acodec"`
	Height     *float64 `json:"height"`
	Abr        *float64 `json:"abr"`
	Fps        *float64 `json:"fps"`
	Filesize   *int64   `json:"filesize"`
	FormatNote string   `json:"format_note"`
}

// FormatRecord is a normalized description of one downloadable stream,
// derived from the raw format list. Not persisted.
type FormatRecord struct {
	FormatID string     `json:"formatId"`
	Ext      string     `json:"ext"`
	Quality  string     `json:"quality"` // height for video, abr for audio, "Unknown" if absent
	Filesize int64      `json:"filesize"`
	Size     string     `json:"size"` // humanized Filesize
	Type     FormatType `json:"type"`
	Note     string     `json:"note"`
	Fps      int        `json:"fps,omitempty"`
	Abr      int        `json:"abr,omitempty"`
}

// VideoInfo is the session-scoped record of one successful metadata fetch.
type VideoInfo struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Duration        int      `json:"duration"` // seconds
	DurationDisplay string   `json:"durationDisplay"`
	Thumbnail       string   `json:"thumbnail"`
	Uploader        string   `json:"uploader"`
	ViewCount       int64    `json:"viewCount"`
	UploadDate      string   `json:"uploadDate"`
	Description     string   `json:"description"`
	Formats         []Format `json:"-"`
}

// LogValue implements slog.LogValuer for structured logging.
func (v VideoInfo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", v.URL),
		slog.String("title", v.Title),
		slog.Int("duration", v.Duration),
		slog.String("uploader", v.Uploader),
		slog.Int64("view_count", v.ViewCount),
		slog.String("upload_date", v.UploadDate),
		slog.Int("formats", len(v.Formats)),
	)
}

// DownloadState is the progress snapshot exposed for polling. It is
// replaced wholesale on every progress event.
type DownloadState struct {
	Status          DownloadStatus `json:"status"`
	Percent         float64        `json:"percent"`
	Message         string         `json:"message"`
	DownloadedBytes int64          `json:"downloadedBytes"`
	TotalBytes      int64          `json:"totalBytes"`
	ETA             time.Duration  `json:"eta"`
	Error           string         `json:"error,omitempty"`
}

// Session holds one interactive client's state: the last fetched video
// info, the derived format list and the in-progress flag.
type Session struct {
	ID         string         `json:"id"`
	VideoInfo  *VideoInfo     `json:"videoInfo,omitempty"`
	Formats    []FormatRecord `json:"formats,omitempty"`
	InProgress bool           `json:"inProgress"`
	Download   DownloadState  `json:"download"`
	TempDir    string         `json:"-"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	ExpiresAt  time.Time      `json:"expiresAt"`
}

// Clone returns a snapshot safe to read without the store's lock.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	cp := *s
	cp.Formats = slices.Clone(s.Formats)

	if s.VideoInfo != nil {
		info := *s.VideoInfo
		info.Formats = slices.Clone(s.VideoInfo.Formats)
		cp.VideoInfo = &info
	}

	return &cp
}

// LogValue implements slog.LogValuer for structured logging.
func (s Session) LogValue() slog.Value {
	title := ""
	if s.VideoInfo != nil {
		title = s.VideoInfo.Title
	}

	return slog.GroupValue(
		slog.String("id", s.ID),
		slog.String("title", title),
		slog.Int("formats", len(s.Formats)),
		slog.Bool("in_progress", s.InProgress),
		slog.String("download_status", string(s.Download.Status)),
		slog.Float64("download_percent", s.Download.Percent),
	)
}
