package segmentation

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"clipforge/internal/services"
)

// DetectorConfig tunes silence detection thresholds.
type DetectorConfig struct {
	// MinSilenceMs is the shortest quiet run that counts as silence.
	MinSilenceMs int
	// NoiseDb is the energy threshold in decibels; quieter audio is silence.
	NoiseDb float64
}

func (c DetectorConfig) withDefaults() DetectorConfig {
	if c.MinSilenceMs <= 0 {
		c.MinSilenceMs = 200
	}
	if c.NoiseDb >= 0 {
		c.NoiseDb = -30
	}
	return c
}

// Detector locates silence intervals in an audio file by running ffmpeg's
// silencedetect filter and parsing its log output. Detection is deterministic
// for a given file and threshold pair.
type Detector struct {
	cfg           DetectorConfig
	ffmpegBinary  string
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewDetector creates a silence detector using the given ffmpeg binary.
func NewDetector(cfg DetectorConfig, ffmpegBinary string) *Detector {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Detector{cfg: cfg.withDefaults(), ffmpegBinary: ffmpegBinary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (d *Detector) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	d.commandRunner = runner
}

// Detect runs silencedetect over the audio file and returns the detected
// intervals in chronological order.
func (d *Detector) Detect(ctx context.Context, audioPath string) ([]SilenceInterval, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "segmentation", "detect", "audio path required", nil)
	}

	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", d.cfg.NoiseDb, float64(d.cfg.MinSilenceMs)/1000.0)
	args := []string{
		"-hide_banner",
		"-i", audioPath,
		"-af", filter,
		"-f", "null", "-",
	}

	output, err := d.run(ctx, d.ffmpegBinary, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrCompose, "segmentation", "detect", "silencedetect failed", err)
	}
	return ParseSilence(bytes.NewReader(output))
}

func (d *Detector) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if d.commandRunner != nil {
		return d.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	// silencedetect reports on stderr
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// ParseSilence extracts silence intervals from ffmpeg silencedetect log
// output. Lines look like:
//
//	[silencedetect @ 0x...] silence_start: 2.7
//	[silencedetect @ 0x...] silence_end: 2.9 | silence_duration: 0.2
//
// A trailing silence_start without a matching end is closed at the point it
// started, producing an empty interval that callers naturally ignore.
func ParseSilence(r io.Reader) ([]SilenceInterval, error) {
	var intervals []SilenceInterval
	var pendingStart float64
	havePending := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if value, ok := fieldValue(line, "silence_start:"); ok {
			pendingStart = value
			havePending = true
			continue
		}
		if value, ok := fieldValue(line, "silence_end:"); ok {
			if !havePending {
				continue
			}
			intervals = append(intervals, SilenceInterval{
				StartMs: secondsToMs(pendingStart),
				EndMs:   secondsToMs(value),
			})
			havePending = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan silencedetect output: %w", err)
	}
	if havePending {
		intervals = append(intervals, SilenceInterval{
			StartMs: secondsToMs(pendingStart),
			EndMs:   secondsToMs(pendingStart),
		})
	}

	sort.Slice(intervals, func(i, j int) bool { return intervals[i].StartMs < intervals[j].StartMs })
	return intervals, nil
}

func fieldValue(line, field string) (float64, bool) {
	idx := strings.Index(line, field)
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[idx+len(field):])
	if cut := strings.IndexByte(rest, '|'); cut >= 0 {
		rest = strings.TrimSpace(rest[:cut])
	}
	if fields := strings.Fields(rest); len(fields) > 0 {
		rest = fields[0]
	}
	value, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func secondsToMs(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}
