// pkg/download/download.go - fetches installer artifacts over HTTP.

package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Timeout bounds a whole download; the App Installer bundle is a few hundred MB.
const Timeout = 15 * time.Minute

// Downloader saves remote files to disk. Each call makes a single attempt.
type Downloader struct {
	Client *http.Client
}

// New returns a Downloader with the default timeout.
func New() *Downloader {
	return &Downloader{Client: &http.Client{Timeout: Timeout}}
}

// File downloads url to dest and returns the number of bytes written. A
// partially written dest is removed on failure.
func (d *Downloader) File(ctx context.Context, url, dest string) (int64, error) {
	if url == "" {
		return 0, fmt.Errorf("invalid parameters: url cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory structure: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare HTTP request: %w", err)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected HTTP status code: %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to open destination file: %w", err)
	}
	n, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(dest)
		return 0, fmt.Errorf("failed to write downloaded data: %w", copyErr)
	}
	return n, nil
}
