package speech

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeWhisperXOutput(t *testing.T, dir, base string, payload string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, base+".json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
}

func TestTranscribeParsesWords(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "voice.wav")
	if err := os.WriteFile(audio, []byte("wav"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	svc := NewWhisperX(Config{Model: "large-v3-turbo"}, dir)
	var gotName string
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		writeWhisperXOutput(t, dir, "voice", `{
			"segments": [
				{"text": "la ia", "start": 0.0, "end": 1.2, "words": [
					{"word": "la", "start": 0.0, "end": 0.5},
					{"word": "ia", "start": 0.6, "end": 1.2}
				]},
				{"text": "te", "start": 1.4, "end": 2.0, "words": [
					{"word": "te", "start": 1.4, "end": 2.0}
				]}
			]
		}`)
		return nil
	})

	words, err := svc.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if gotName != "uvx" {
		t.Fatalf("expected uvx runner, got %s", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "whisperx "+audio) {
		t.Fatalf("missing whisperx invocation: %s", joined)
	}
	if !strings.Contains(joined, "--model large-v3-turbo") {
		t.Fatalf("missing model flag: %s", joined)
	}
	if !strings.Contains(joined, "--device cpu --compute_type float32") {
		t.Fatalf("expected cpu device flags: %s", joined)
	}

	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	if words[0].Text != "la" || words[0].StartMs != 0 || words[0].EndMs != 500 {
		t.Fatalf("unexpected first word: %+v", words[0])
	}
	if words[2].Text != "te" || words[2].StartMs != 1400 || words[2].EndMs != 2000 {
		t.Fatalf("unexpected last word: %+v", words[2])
	}
}

func TestTranscribeCommandFailure(t *testing.T) {
	dir := t.TempDir()
	svc := NewWhisperX(Config{}, dir)
	svc.WithCommandRunner(func(_ context.Context, _ string, _ ...string) error {
		return os.ErrPermission
	})
	if _, err := svc.Transcribe(context.Background(), filepath.Join(dir, "voice.wav")); err == nil {
		t.Fatal("expected error from failed runner")
	}
}

func TestLoadWordsUntimedTokens(t *testing.T) {
	dir := t.TempDir()
	payload := map[string]any{
		"segments": []map[string]any{
			{"text": "one 2 three", "start": 0.0, "end": 3.0, "words": []map[string]any{
				{"word": "one", "start": 0.0, "end": 1.0},
				{"word": "2"},
				{"word": "three", "start": 2.0, "end": 3.0},
			}},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	writeWhisperXOutput(t, dir, "mix", string(data))

	words, err := LoadWords(filepath.Join(dir, "mix.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	if words[1].StartMs != 1000 || words[1].EndMs != 1000 {
		t.Fatalf("untimed word should inherit previous end: %+v", words[1])
	}
	if words[2].StartMs != 2000 {
		t.Fatalf("timed word after untimed should keep its timing: %+v", words[2])
	}
}

func TestLoadWordsMonotonic(t *testing.T) {
	dir := t.TempDir()
	writeWhisperXOutput(t, dir, "overlap", `{
		"segments": [
			{"text": "a b", "start": 0, "end": 2, "words": [
				{"word": "a", "start": 0.0, "end": 1.5},
				{"word": "b", "start": 1.0, "end": 2.0}
			]}
		]
	}`)
	words, err := LoadWords(filepath.Join(dir, "overlap.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if words[1].StartMs < words[0].EndMs {
		t.Fatalf("expected overlapping start to clamp at %d, got %d", words[0].EndMs, words[1].StartMs)
	}
}
