package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/iconidentify/xresolve/internal/config"
	"github.com/iconidentify/xresolve/internal/domain"
)

// HTTPDownloader implements Downloader using HTTP requests.
//
// Resolved video URLs are signed and short-lived, so failures are not
// retried: a 403 or 401 means the URL has expired and the tweet must be
// resolved again.
type HTTPDownloader struct {
	// streamClient is used for downloads without overall timeout;
	// the caller's context (plus cfg.Timeout) bounds the transfer.
	streamClient *http.Client
	cfg          config.DownloadConfig
	logger       *slog.Logger
}

// NewHTTPDownloader creates a new HTTP-based video downloader.
func NewHTTPDownloader(cfg config.DownloadConfig, logger *slog.Logger) *HTTPDownloader {
	streamTransport := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
	}

	return &HTTPDownloader{
		streamClient: &http.Client{
			Transport: streamTransport,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Filename returns the conventional local name for a resolved video.
func Filename(tweetID string, bitrate int) string {
	return fmt.Sprintf("tweet_%s_%d.mp4", tweetID, bitrate)
}

// Download streams the video at url. The caller is responsible for
// closing the returned reader.
func (d *HTTPDownloader) Download(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	// Set headers to mimic browser request
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	req.Header.Set("Accept", "video/mp4,video/*;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Referer", "https://x.com/")

	resp, err := d.streamClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, 0, domain.ErrURLExpired
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("%w: unexpected status %d", domain.ErrDownloadFailed, resp.StatusCode)
	}

	size := resp.ContentLength
	if size < 0 {
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			size, _ = strconv.ParseInt(cl, 10, 64)
		}
	}

	return newProgressReader(resp.Body, size, d.logger), size, nil
}

// SaveTo downloads url into path. The video is written through a .part
// file and renamed on success, so a failed download never leaves a
// partial file at path.
func (d *HTTPDownloader) SaveTo(ctx context.Context, url, path string) (int64, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	reader, size, err := d.Download(ctx, url)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", tmp, err)
	}

	written, err := io.Copy(f, reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w after %v", domain.ErrDownloadTimeout, d.cfg.Timeout)
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	if size > 0 && written != size {
		d.logger.Warn("download size mismatch", "expected", size, "written", written, "path", path)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("rename %s: %w", tmp, err)
	}

	d.logger.Info("download complete", "path", path, "bytes", written)
	return written, nil
}

// progressReader wraps an io.ReadCloser to log download progress on
// long transfers.
type progressReader struct {
	reader     io.ReadCloser
	total      int64
	downloaded int64
	lastLog    time.Time
	logger     *slog.Logger
}

func newProgressReader(r io.ReadCloser, total int64, logger *slog.Logger) *progressReader {
	return &progressReader{
		reader:  r,
		total:   total,
		lastLog: time.Now(),
		logger:  logger,
	}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		p.downloaded += int64(n)
		if time.Since(p.lastLog) > 5*time.Second {
			p.logProgress()
			p.lastLog = time.Now()
		}
	}
	return n, err
}

func (p *progressReader) Close() error {
	return p.reader.Close()
}

func (p *progressReader) logProgress() {
	if p.total > 0 {
		pct := float64(p.downloaded) / float64(p.total) * 100
		p.logger.Info("download progress",
			"downloaded_mb", p.downloaded/(1024*1024),
			"total_mb", p.total/(1024*1024),
			"percent", fmt.Sprintf("%.1f%%", pct),
		)
	} else {
		p.logger.Info("download progress",
			"downloaded_mb", p.downloaded/(1024*1024),
		)
	}
}
