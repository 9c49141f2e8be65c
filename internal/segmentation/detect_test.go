package segmentation_test

import (
	"context"
	"strings"
	"testing"

	"clipforge/internal/segmentation"
)

const silencedetectLog = `Input #0, mp3, from 'track.mp3':
  Duration: 00:00:21.00, start: 0.000000, bitrate: 128 kb/s
[silencedetect @ 0x55f] silence_start: 2.7
[silencedetect @ 0x55f] silence_end: 2.9 | silence_duration: 0.2
[silencedetect @ 0x55f] silence_start: 5.8
[silencedetect @ 0x55f] silence_end: 6.0 | silence_duration: 0.2
size=N/A time=00:00:21.00 bitrate=N/A speed= 512x
`

func TestParseSilence(t *testing.T) {
	intervals, err := segmentation.ParseSilence(strings.NewReader(silencedetectLog))
	if err != nil {
		t.Fatalf("ParseSilence failed: %v", err)
	}
	want := []segmentation.SilenceInterval{
		{StartMs: 2700, EndMs: 2900},
		{StartMs: 5800, EndMs: 6000},
	}
	if len(intervals) != len(want) {
		t.Fatalf("expected %d intervals, got %#v", len(want), intervals)
	}
	for i := range want {
		if intervals[i] != want[i] {
			t.Fatalf("interval %d: expected %+v, got %+v", i, want[i], intervals[i])
		}
	}
}

func TestParseSilenceUnterminatedStart(t *testing.T) {
	log := "[silencedetect @ 0x1] silence_start: 19.5\n"
	intervals, err := segmentation.ParseSilence(strings.NewReader(log))
	if err != nil {
		t.Fatalf("ParseSilence failed: %v", err)
	}
	if len(intervals) != 1 {
		t.Fatalf("expected trailing interval, got %#v", intervals)
	}
	if intervals[0].StartMs != 19500 || intervals[0].EndMs != 19500 {
		t.Fatalf("expected empty trailing interval at 19500, got %+v", intervals[0])
	}
}

func TestParseSilenceEmptyOutput(t *testing.T) {
	intervals, err := segmentation.ParseSilence(strings.NewReader("no silence lines here\n"))
	if err != nil {
		t.Fatalf("ParseSilence failed: %v", err)
	}
	if len(intervals) != 0 {
		t.Fatalf("expected no intervals, got %#v", intervals)
	}
}

func TestDetectorUsesConfiguredThresholds(t *testing.T) {
	detector := segmentation.NewDetector(segmentation.DetectorConfig{MinSilenceMs: 450, NoiseDb: -35}, "ffmpeg")
	var capturedArgs []string
	detector.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		capturedArgs = args
		return []byte(silencedetectLog), nil
	})

	intervals, err := detector.Detect(context.Background(), "track.mp3")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(intervals) != 2 {
		t.Fatalf("expected parsed intervals, got %#v", intervals)
	}

	joined := strings.Join(capturedArgs, " ")
	if !strings.Contains(joined, "silencedetect=noise=-35dB:d=0.45") {
		t.Fatalf("expected thresholds in filter args, got %q", joined)
	}
	if !strings.Contains(joined, "track.mp3") {
		t.Fatalf("expected input path in args, got %q", joined)
	}
}
