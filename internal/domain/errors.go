package domain

import "errors"

// Domain errors. The resolve-side taxonomy (invalid URL, credential,
// backend, no-video, malformed-response) lives in pkg/twitter; these
// cover what happens after a URL has been resolved.
var (
	// ErrDownloadFailed is returned when the video download fails.
	ErrDownloadFailed = errors.New("video download failed")

	// ErrDownloadTimeout is returned when the download times out.
	ErrDownloadTimeout = errors.New("video download timed out")

	// ErrURLExpired is returned when the resolved video URL has expired.
	ErrURLExpired = errors.New("video URL has expired")
)
