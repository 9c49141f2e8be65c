package alignment_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"clipforge/internal/alignment"
)

type fakeTranscriber struct {
	words    []alignment.RecognizedWord
	err      error
	seenPath string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) ([]alignment.RecognizedWord, error) {
	f.seenPath = audioPath
	return f.words, f.err
}

type fakeExtractor struct {
	err     error
	written string
}

func (f *fakeExtractor) ExtractVocals(ctx context.Context, src, dst string) error {
	if f.err != nil {
		return f.err
	}
	f.written = dst
	return os.WriteFile(dst, []byte("pcm"), 0o644)
}

func TestKaraokeWritesSRT(t *testing.T) {
	transcriber := &fakeTranscriber{words: recognizedTriple()}
	svc := alignment.NewService(transcriber, nil, alignment.OverlayOptions{WordsPerLine: 3}, nil)

	dir := t.TempDir()
	result, err := svc.Karaoke(context.Background(), "/tmp/vocals.wav", "La ia te", alignment.OverlayModeWord, dir)
	if err != nil {
		t.Fatalf("Karaoke failed: %v", err)
	}
	if result.Mode != alignment.ModeZip {
		t.Fatalf("expected zip mode, got %s", result.Mode)
	}
	if len(result.Overlays) != 3 {
		t.Fatalf("expected 3 overlay windows, got %d", len(result.Overlays))
	}
	data, err := os.ReadFile(result.SRTPath)
	if err != nil {
		t.Fatalf("read SRT: %v", err)
	}
	if !strings.Contains(string(data), "La ia te") {
		t.Fatalf("expected line text in SRT, got %q", data)
	}
}

func TestKaraokeTranscribeFailure(t *testing.T) {
	transcriber := &fakeTranscriber{err: errors.New("model unavailable")}
	svc := alignment.NewService(transcriber, nil, alignment.OverlayOptions{}, nil)
	if _, err := svc.Karaoke(context.Background(), "/tmp/vocals.wav", "", "", t.TempDir()); err == nil {
		t.Fatal("expected transcription failure to surface")
	}
}

func TestKaraokeEmptyTranscription(t *testing.T) {
	transcriber := &fakeTranscriber{}
	svc := alignment.NewService(transcriber, nil, alignment.OverlayOptions{}, nil)
	if _, err := svc.Karaoke(context.Background(), "/tmp/vocals.wav", "hi", "", t.TempDir()); err == nil {
		t.Fatal("expected error for empty transcription")
	}
}

func TestKaraokeExtractsVocalsBeforeTranscription(t *testing.T) {
	transcriber := &fakeTranscriber{words: recognizedTriple()}
	extractor := &fakeExtractor{}
	svc := alignment.NewService(transcriber, extractor, alignment.OverlayOptions{WordsPerLine: 3}, nil)

	dir := t.TempDir()
	if _, err := svc.Karaoke(context.Background(), "/media/session/clip.mp4", "", "", dir); err != nil {
		t.Fatalf("Karaoke failed: %v", err)
	}
	if extractor.written == "" {
		t.Fatal("expected a speech track to be extracted")
	}
	if transcriber.seenPath != extractor.written {
		t.Fatalf("expected transcription of extracted track %q, got %q", extractor.written, transcriber.seenPath)
	}
	if _, err := os.Stat(extractor.written); !os.IsNotExist(err) {
		t.Fatalf("expected extracted track to be removed, stat err: %v", err)
	}
}

func TestKaraokeExtractionFailure(t *testing.T) {
	transcriber := &fakeTranscriber{words: recognizedTriple()}
	extractor := &fakeExtractor{err: errors.New("no audio stream")}
	svc := alignment.NewService(transcriber, extractor, alignment.OverlayOptions{}, nil)
	if _, err := svc.Karaoke(context.Background(), "/media/session/clip.mp4", "", "", t.TempDir()); err == nil {
		t.Fatal("expected extraction failure to surface")
	}
	if transcriber.seenPath != "" {
		t.Fatal("expected no transcription after failed extraction")
	}
}
