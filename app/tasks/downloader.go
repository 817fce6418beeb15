package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const downloadMaxRetries = 3

// Downloader fetches source CSV files over HTTP with exponential backoff
// retries. sam.gov downloads intermittently fail at the gateway; when all
// retries are exhausted the S3 mirror of the same extract is tried once.
type Downloader struct {
	httpClient *http.Client
	userAgent  string
}

func NewDownloader(httpClient *http.Client, userAgent string) *Downloader {
	return &Downloader{httpClient: httpClient, userAgent: userAgent}
}

// Fetch downloads url into destPath, retrying transient failures. The
// destination is written atomically enough for our purposes: a failed
// download removes the partial file.
func (d *Downloader) Fetch(ctx context.Context, url, destPath string) error {
	err := d.fetchWithRetry(ctx, url, destPath)
	if err == nil {
		return nil
	}

	mirror, ok := mirrorURL(url)
	if !ok {
		return err
	}

	slog.Warn("Download failed, trying S3 mirror", "url", url, "mirror", mirror, "error", err)
	return d.fetchWithRetry(ctx, mirror, destPath)
}

func (d *Downloader) fetchWithRetry(ctx context.Context, url, destPath string) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), downloadMaxRetries), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := d.fetchOnce(ctx, url, destPath)
		if err != nil {
			slog.Debug("Download attempt failed", "url", url, "attempt", attempt, "error", err)
		}
		return err
	}, policy)
}

func (d *Downloader) fetchOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// An absent archive is not transient; do not retry.
		return backoff.Permanent(fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create %s: %w", destPath, err))
	}

	written, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}

	slog.Info("Download complete", "url", url, "bytes", written)
	return nil
}

// mirrorURL rewrites a sam.gov extract URL to its S3 mirror. Returns false
// for URLs that have no known mirror.
func mirrorURL(url string) (string, bool) {
	if !strings.Contains(url, "sam.gov") || strings.Contains(url, "s3.amazonaws.com") {
		return "", false
	}
	mirror := strings.Replace(url,
		"https://sam.gov/api/prod/fileextractservices/v1/api/download/",
		"https://falextracts.s3.amazonaws.com/", 1)
	mirror = strings.Replace(mirror, "?privacy=Public", "", 1)
	if mirror == url {
		return "", false
	}
	return mirror, true
}

// NewHTTPClient returns the client used for extract downloads. The long
// timeout accommodates multi-hundred-megabyte files.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Minute}
}
