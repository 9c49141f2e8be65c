package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipforge/internal/fileutil"
	"clipforge/internal/services"
)

// Fetcher downloads remote media sources into per-session staging
// directories. Each session gets a fresh uuid-named directory so
// concurrent jobs never collide.
type Fetcher struct {
	client   *http.Client
	stageDir string
	maxBytes int64
}

// Options configures a Fetcher.
type Options struct {
	// StagingDir is the parent directory for download sessions.
	StagingDir string
	// Timeout bounds each individual download.
	Timeout time.Duration
	// MaxBytes caps the size of a single source file. Zero means no cap.
	MaxBytes int64
}

// New builds a Fetcher.
func New(opts Options) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		stageDir: opts.StagingDir,
		maxBytes: opts.MaxBytes,
	}
}

// NewSession creates a staging directory for one job's downloads.
func (f *Fetcher) NewSession() (string, error) {
	session := filepath.Join(f.stageDir, uuid.New().String())
	if err := os.MkdirAll(session, 0o755); err != nil {
		return "", services.Wrap(services.ErrFetch, "fetch", "session", "create staging directory", err)
	}
	return session, nil
}

// Download fetches one URL into dir. The file keeps the URL's extension,
// falling back to fallbackExt when the URL carries none. A source without a
// scheme is treated as a local path and copied into the session. Returns the
// local path of the stored file.
func (f *Fetcher) Download(ctx context.Context, rawURL, dir, baseName, fallbackExt string) (string, error) {
	if rawURL == "" {
		return "", services.Wrap(services.ErrValidation, "fetch", "download", "empty source url", nil)
	}
	if !strings.Contains(rawURL, "://") {
		return f.copyLocal(rawURL, dir, baseName, fallbackExt)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "fetch", "download", fmt.Sprintf("invalid url %q", rawURL), err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		marker := services.ErrFetch
		var urlErr interface{ Timeout() bool }
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			marker = services.ErrTransient
		}
		return "", services.Wrap(marker, "fetch", "download", fmt.Sprintf("fetch %q", rawURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", services.Wrap(services.ErrNotFound, "fetch", "download", fmt.Sprintf("source %q not found", rawURL), nil)
	}
	if resp.StatusCode != http.StatusOK {
		marker := services.ErrFetch
		if resp.StatusCode >= 500 {
			marker = services.ErrTransient
		}
		return "", services.Wrap(marker, "fetch", "download", fmt.Sprintf("fetch %q: status %d", rawURL, resp.StatusCode), nil)
	}
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return "", services.Wrap(services.ErrValidation, "fetch", "download", fmt.Sprintf("source %q exceeds %d byte limit", rawURL, f.maxBytes), nil)
	}

	ext := fileutil.ExtFromURL(rawURL, fallbackExt)
	dest := filepath.Join(dir, baseName+ext)
	if err := f.store(resp.Body, dest); err != nil {
		return "", services.Wrap(services.ErrFetch, "fetch", "download", fmt.Sprintf("store %q", rawURL), err)
	}
	return dest, nil
}

// copyLocal stages an already-local source file so jobs can mix local paths
// with remote URLs and cleanup still removes everything with the session.
func (f *Fetcher) copyLocal(src, dir, baseName, fallbackExt string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "fetch", "copy", fmt.Sprintf("local source %q not found", src), err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrValidation, "fetch", "copy", fmt.Sprintf("local source %q is a directory", src), nil)
	}
	if f.maxBytes > 0 && info.Size() > f.maxBytes {
		return "", services.Wrap(services.ErrValidation, "fetch", "copy", fmt.Sprintf("source %q exceeds %d byte limit", src, f.maxBytes), nil)
	}

	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = fallbackExt
	}
	dest := filepath.Join(dir, baseName+ext)
	if err := fileutil.CopyFile(src, dest); err != nil {
		return "", services.Wrap(services.ErrFetch, "fetch", "copy", fmt.Sprintf("stage %q", src), err)
	}
	return dest, nil
}

func (f *Fetcher) store(body io.Reader, dest string) error {
	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	reader := body
	if f.maxBytes > 0 {
		reader = io.LimitReader(body, f.maxBytes+1)
	}
	written, err := io.Copy(out, reader)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if written == 0 {
		return errors.New("empty response body")
	}
	if f.maxBytes > 0 && written > f.maxBytes {
		return fmt.Errorf("source exceeds %d byte limit", f.maxBytes)
	}
	return os.Rename(tmp, dest)
}

// Cleanup removes a download session directory and everything in it.
func (f *Fetcher) Cleanup(session string) {
	if session == "" || f.stageDir == "" {
		return
	}
	rel, err := filepath.Rel(f.stageDir, session)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return
	}
	os.RemoveAll(session)
}
