package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/fileutil"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected destination contents %q", data)
	}
}

func TestExtFromURL(t *testing.T) {
	cases := []struct {
		url      string
		fallback string
		want     string
	}{
		{"https://cdn.example.com/a/photo.JPG", ".jpg", ".jpg"},
		{"https://cdn.example.com/a/photo.png?sig=abc123", ".jpg", ".png"},
		{"https://cdn.example.com/track", ".mp3", ".mp3"},
		{"https://cdn.example.com/clip.mp4#t=10", ".mp4", ".mp4"},
		{"://bad", ".jpg", ".jpg"},
	}
	for _, tc := range cases {
		if got := fileutil.ExtFromURL(tc.url, tc.fallback); got != tc.want {
			t.Fatalf("ExtFromURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.srt")
	if err := fileutil.WriteAtomic(path, []byte("1\n"), 0o644); err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}
	if !fileutil.Exists(path) {
		t.Fatal("expected file to exist")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file cleaned up, found %d entries", len(entries))
	}
}
