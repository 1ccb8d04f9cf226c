// pkg/download/download.go - fetching installers into the agent's temp directory.

package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/windowsadmins/appstore/pkg/logging"
)

var (
	// ErrTransport covers network failures and non-2xx responses.
	ErrTransport = errors.New("download failed")
	// ErrCanceled is returned when the caller went away mid-download.
	ErrCanceled = errors.New("download canceled")
	// ErrTimeout is returned when the download exceeded its deadline.
	ErrTimeout = errors.New("download timed out")
)

// FileNameFromURL derives the local file name from the final path segment of rawURL.
func FileNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	// an escaped separator must not walk out of the download directory
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	switch name {
	case "", ".", "..", "/":
		return "", fmt.Errorf("cannot derive a file name from url %q", rawURL)
	}
	// filepath.Base reports a bare root as the OS separator
	if name == string(filepath.Separator) {
		return "", fmt.Errorf("cannot derive a file name from url %q", rawURL)
	}
	return name, nil
}

// Downloader fetches URLs to local files.
type Downloader struct {
	client *http.Client
}

// New returns a Downloader using client, or http.DefaultClient when nil.
// Deadlines come from the context passed to DownloadFile.
func New(client *http.Client) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{client: client}
}

// DownloadFile fetches rawURL into dest. The body is written to a uniquely
// named hidden temp file beside dest and renamed on completion, so dest never
// holds a partial file.
func (d *Downloader) DownloadFile(ctx context.Context, rawURL, dest string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: url cannot be empty", ErrTransport)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory structure: %w", err)
	}

	logging.Info("Starting download", "url", rawURL, "destination", dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare HTTP request: %v", ErrTransport, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected HTTP status code: %d", ErrTransport, resp.StatusCode)
	}

	// the temp name is unique per call so it can never be another request's
	// destination or temp file
	out, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.partial")
	if err != nil {
		return fmt.Errorf("failed to open destination file: %w", err)
	}
	part := out.Name()

	written, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		_ = os.Remove(part)
		return classify(ctx, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(part)
		return fmt.Errorf("failed to write downloaded data: %w", closeErr)
	}

	// installers must be executable where the OS checks the mode bits
	if err := os.Chmod(part, 0755); err != nil {
		_ = os.Remove(part)
		return fmt.Errorf("failed to mark download executable: %w", err)
	}

	if err := os.Rename(part, dest); err != nil {
		_ = os.Remove(part)
		return fmt.Errorf("failed to move download into place: %w", err)
	}

	logging.Info("Download completed successfully", "file", dest, "bytes", written)
	return nil
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}
