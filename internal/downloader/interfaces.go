package downloader

import (
	"context"
	"io"
)

// Downloader fetches resolved video URLs.
type Downloader interface {
	// Download streams the video at url. Caller is responsible for
	// closing the reader.
	Download(ctx context.Context, url string) (io.ReadCloser, int64, error)

	// SaveTo downloads url into path atomically.
	SaveTo(ctx context.Context, url, path string) (int64, error)
}
