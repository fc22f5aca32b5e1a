// Package errs defines common error variables used across the application.
package errs

import "errors"

var (
	// ErrInvalidRequestBody indicates that the request body is invalid or cannot be parsed.
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrInvalidURL indicates that the URL field in the request is not a YouTube URL.
	ErrInvalidURL = errors.New("invalid url field")
	// ErrInvalidFormatID indicates that the format_id field in the request is empty.
	ErrInvalidFormatID = errors.New("invalid format_id field")
)

// Session errors.
var (
	// ErrSessionNotFound indicates that the session is not found in storage.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionIDEmpty indicates that the session ID is empty.
	ErrSessionIDEmpty = errors.New("session id is empty")
	// ErrDownloadInProgress indicates that the session already has a download running.
	ErrDownloadInProgress = errors.New("download already in progress")
	// ErrUnknownFormat indicates that the requested format id is not among the session's formats.
	ErrUnknownFormat = errors.New("unknown format id")
)

// Extractor and downloader errors.
var (
	// ErrInfoFetch indicates that video metadata extraction failed.
	ErrInfoFetch = errors.New("video info fetch failed")
	// ErrDownloadFailed indicates that the download failed.
	ErrDownloadFailed = errors.New("download failed")
	// ErrFileNotFound indicates that the engine finished without reporting an output file.
	ErrFileNotFound = errors.New("download completed but file not found")
	// ErrBinaryNotFound indicates that a required binary was not found.
	ErrBinaryNotFound = errors.New("binary not found")
	// ErrUnsupportedPlatform indicates that the current platform is not supported.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// Pinger errors.
var (
	// ErrBootTimeMalformed indicates that the persisted boot timestamp cannot be parsed.
	ErrBootTimeMalformed = errors.New("boot time file malformed")
	// ErrWeblistMissing indicates that the URL list file does not exist.
	ErrWeblistMissing = errors.New("weblist not found")
)
