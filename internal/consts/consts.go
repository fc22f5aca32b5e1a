// Package consts defines application-wide constants.
package consts

import "time"

const (
	// DefaultHandlerTimeout is the default timeout for HTTP handlers.
	DefaultHandlerTimeout = 30 * time.Second
	// DefaultSessionTTL is the default time-to-live for stored sessions.
	DefaultSessionTTL = 1 * time.Hour
	// DefaultSimulateTime is the default time to simulate a transfer in the mock downloader.
	DefaultSimulateTime = 1 * time.Second
	// TimeLayout is the textual timestamp format shared by the boot file,
	// the visit log and the status page.
	TimeLayout = "2006-01-02 15:04:05"
)

// HTTP response messages.
const (
	// RespInvalidRequestBody is returned when the request body is invalid.
	RespInvalidRequestBody = "invalid request body"
	// RespQueryParamMissing is returned when a required path or query parameter is missing.
	RespQueryParamMissing = "query param missing or invalid"
	// RespUnprocessableEntity is returned when the request cannot be processed.
	RespUnprocessableEntity = "unprocessable entity"
	// RespInfoFetched is returned when video metadata is successfully fetched.
	RespInfoFetched = "video info fetched"
	// RespInfoFetchFail is returned when metadata extraction fails.
	RespInfoFetchFail = "video info fetch failed"
	// RespSessionNotFound is returned when a session is not found.
	RespSessionNotFound = "session not found"
	// RespSessionRetrieved is returned when a session is successfully retrieved.
	RespSessionRetrieved = "session retrieved"
	// RespDownloadInProgress is returned when a session already has a download running.
	RespDownloadInProgress = "download already in progress"
	// RespDownloadFail is returned when a download fails.
	RespDownloadFail = "download failed"
	// RespFileNotFound is returned when the engine finished without producing a file.
	RespFileNotFound = "download completed but file not found"
)

// Downloader identifiers.
const (
	// DownloaderYTdlp is the yt-dlp downloader identifier.
	DownloaderYTdlp = "ytdlp"
	// DownloaderMock is the mock downloader identifier for testing.
	DownloaderMock = "mock"
)

// Visit log markers.
const (
	// VisitOK marks a successful page visit in the log.
	VisitOK = "✅"
	// VisitFail marks a failed page visit in the log.
	VisitFail = "❌"
)
