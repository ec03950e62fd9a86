package sources

import (
	"archive/zip"
	"bytes"
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
	"time"
)

// ErrUnsupportedFormat is returned for a download that is neither a ZIP
// archive nor a file with the library extension.
var ErrUnsupportedFormat = errors.New("unsupported bundle format")

// maxMemberBytes caps a single extracted archive member.
const maxMemberBytes = 64 << 20

var zipMagic = []byte("PK\x03\x04")

// Fetcher downloads datasheet bundles into a library directory.
type Fetcher struct {
	Client *http.Client
	// Attempts is the number of download tries (default 3).
	Attempts int
	// Backoff is the wait before the second try; it doubles after each
	// failure (default 2s).
	Backoff time.Duration
	// Extension selects the files kept from a bundle (default ".txt").
	Extension string
}

// NewFetcher returns a Fetcher with the default retry policy.
func NewFetcher(extension string) *Fetcher {
	return &Fetcher{
		Client:    &http.Client{Timeout: 10 * time.Minute},
		Attempts:  3,
		Backoff:   2 * time.Second,
		Extension: extension,
	}
}

func (f *Fetcher) defaults() {
	if f.Client == nil {
		f.Client = http.DefaultClient
	}
	if f.Attempts <= 0 {
		f.Attempts = 3
	}
	if f.Extension == "" {
		f.Extension = ".txt"
	}
}

// Fetch downloads rawURL into destDir. A ZIP archive has its members with the
// library extension extracted (flattened to their base names); any other
// download is kept only if the URL path itself has the extension. It returns
// the written paths.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destDir string) ([]string, error) {
	f.defaults()
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", destDir, err)
	}

	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := f.download(ctx, rawURL, tmpPath); err != nil {
		return nil, err
	}

	isZip, err := hasPrefix(tmpPath, zipMagic)
	if err != nil {
		return nil, err
	}
	if isZip {
		return unzipMembers(tmpPath, destDir, f.Extension)
	}

	name := path.Base(u.Path)
	if !strings.HasSuffix(name, f.Extension) {
		return nil, fmt.Errorf("%w: %s is not a zip archive or a %s file", ErrUnsupportedFormat, rawURL, f.Extension)
	}
	dest := filepath.Join(destDir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, fmt.Errorf("save %s: %w", dest, err)
	}
	return []string{dest}, nil
}

// download fetches url to dest with retries and exponential backoff.
func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	var lastErr error
	backoff := f.Backoff
	for attempt := 0; attempt < f.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := f.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			continue
		}

		out, err := os.Create(dest)
		if err != nil {
			resp.Body.Close()
			return fmt.Errorf("create file: %w", err)
		}

		_, copyErr := io.Copy(out, resp.Body)
		resp.Body.Close()
		closeErr := out.Close()

		if copyErr != nil {
			lastErr = copyErr
			continue
		}
		if closeErr != nil {
			return closeErr
		}
		return nil
	}
	return fmt.Errorf("download %s failed after %d attempts: %w", url, f.Attempts, lastErr)
}

func hasPrefix(path string, magic []byte) (bool, error) {
	fh, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer fh.Close()
	buf := make([]byte, len(magic))
	n, err := io.ReadFull(fh, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return bytes.Equal(buf[:n], magic), nil
}

// unzipMembers extracts the archive members ending in ext into destDir.
// Directories, hidden files and other extensions are skipped.
func unzipMembers(src, destDir, ext string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var paths []string
	for _, zf := range r.File {
		base := path.Base(zf.Name)
		if zf.FileInfo().IsDir() || strings.HasPrefix(base, ".") || !strings.HasSuffix(base, ext) {
			continue
		}
		destPath := filepath.Join(destDir, base)
		if err := extractMember(zf, destPath); err != nil {
			return nil, err
		}
		paths = append(paths, destPath)
	}
	return paths, nil
}

func extractMember(zf *zip.File, destPath string) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", zf.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	n, err := io.Copy(out, io.LimitReader(rc, maxMemberBytes+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > maxMemberBytes {
		err = fmt.Errorf("member exceeds %d bytes", maxMemberBytes)
	}
	if err != nil {
		os.Remove(destPath)
		return fmt.Errorf("extract %s: %w", zf.Name, err)
	}
	return nil
}
