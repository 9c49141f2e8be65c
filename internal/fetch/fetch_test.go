package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipforge/internal/services"
)

func TestDownloadStoresFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	stage := t.TempDir()
	fetcher := New(Options{StagingDir: stage, Timeout: 5 * time.Second})
	session, err := fetcher.NewSession()
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if filepath.Dir(session) != stage {
		t.Fatalf("session %s should live under %s", session, stage)
	}

	path, err := fetcher.Download(context.Background(), server.URL+"/pics/cat.jpg?size=large", session, "image_00", ".png")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if !strings.HasSuffix(path, "image_00.jpg") {
		t.Fatalf("expected url extension to win, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestDownloadFallbackExtension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	fetcher := New(Options{StagingDir: t.TempDir()})
	dir := t.TempDir()
	path, err := fetcher.Download(context.Background(), server.URL+"/stream", dir, "voice", ".mp3")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if !strings.HasSuffix(path, "voice.mp3") {
		t.Fatalf("expected fallback extension, got %s", path)
	}
}

func TestDownloadNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	fetcher := New(Options{StagingDir: t.TempDir()})
	_, err := fetcher.Download(context.Background(), server.URL+"/missing.jpg", t.TempDir(), "x", ".jpg")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}
}

func TestDownloadServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := New(Options{StagingDir: t.TempDir()})
	_, err := fetcher.Download(context.Background(), server.URL+"/flaky.jpg", t.TempDir(), "x", ".jpg")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestDownloadSizeCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	fetcher := New(Options{StagingDir: t.TempDir(), MaxBytes: 1024})
	dir := t.TempDir()
	if _, err := fetcher.Download(context.Background(), server.URL+"/big.jpg", dir, "big", ".jpg"); err == nil {
		t.Fatal("expected size cap error")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("oversized download should leave no file, found %d entries", len(entries))
	}
}

func TestDownloadEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	fetcher := New(Options{StagingDir: t.TempDir()})
	if _, err := fetcher.Download(context.Background(), server.URL+"/empty.jpg", t.TempDir(), "x", ".jpg"); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestCleanupRefusesOutsidePaths(t *testing.T) {
	stage := t.TempDir()
	outside := t.TempDir()
	marker := filepath.Join(outside, "keep.txt")
	if err := os.WriteFile(marker, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	fetcher := New(Options{StagingDir: stage})
	fetcher.Cleanup(outside)
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("cleanup must not touch paths outside staging: %v", err)
	}

	session, err := fetcher.NewSession()
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	fetcher.Cleanup(session)
	if _, err := os.Stat(session); !os.IsNotExist(err) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestDownloadStagesLocalPath(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "track.wav")
	if err := os.WriteFile(src, []byte("pcm-bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	fetcher := New(Options{StagingDir: t.TempDir(), Timeout: 5 * time.Second})
	session, err := fetcher.NewSession()
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}

	local, err := fetcher.Download(context.Background(), src, session, "audio_00", ".mp3")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if local != filepath.Join(session, "audio_00.wav") {
		t.Fatalf("unexpected staged path %s", local)
	}
	data, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("read staged copy: %v", err)
	}
	if string(data) != "pcm-bytes" {
		t.Fatalf("staged copy mismatch: %q", data)
	}
}

func TestDownloadLocalPathMissing(t *testing.T) {
	fetcher := New(Options{StagingDir: t.TempDir(), Timeout: 5 * time.Second})
	session, err := fetcher.NewSession()
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	_, err = fetcher.Download(context.Background(), "/nonexistent/track.wav", session, "audio_00", ".mp3")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}
}

func TestDownloadLocalPathSizeCap(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "big.wav")
	if err := os.WriteFile(src, []byte(strings.Repeat("x", 64)), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	fetcher := New(Options{StagingDir: t.TempDir(), Timeout: 5 * time.Second, MaxBytes: 16})
	session, err := fetcher.NewSession()
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	_, err = fetcher.Download(context.Background(), src, session, "audio_00", ".mp3")
	if !services.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
