package media

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", name, err, tailOf(string(output)))
	}
	return output, nil
}

// FFmpeg composes media files by shelling out to ffmpeg and ffprobe.
type FFmpeg struct {
	ffmpegBin   string
	ffprobeBin  string
	frameWidth  int
	frameHeight int
	frameRate   int
	preset      string
	logger      *slog.Logger
	run         commandRunner
}

// NewFFmpeg builds an engine from media configuration.
func NewFFmpeg(cfg config.Media, logger *slog.Logger) *FFmpeg {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FFmpeg{
		ffmpegBin:   cfg.FFmpegBinary,
		ffprobeBin:  cfg.FFprobeBinary,
		frameWidth:  cfg.FrameWidth,
		frameHeight: cfg.FrameHeight,
		frameRate:   cfg.FrameRate,
		preset:      cfg.Preset,
		logger:      logger,
		run:         defaultRunner,
	}
}

// WithCommandRunner replaces the process launcher, used by tests.
func (f *FFmpeg) WithCommandRunner(run commandRunner) *FFmpeg {
	f.run = run
	return f
}

// ProbeDurationMs returns the container duration in milliseconds.
func (f *FFmpeg) ProbeDurationMs(ctx context.Context, path string) (int64, error) {
	output, err := f.run(ctx, f.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	if err != nil {
		return 0, services.Wrap(services.ErrCompose, "media", "probe", "probe duration", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, services.Wrap(services.ErrCompose, "media", "probe", fmt.Sprintf("parse duration %q", strings.TrimSpace(string(output))), err)
	}
	return int64(seconds * 1000), nil
}

// ExtractRange copies [startMs, endMs) from src into dst without re-encoding.
func (f *FFmpeg) ExtractRange(ctx context.Context, src string, startMs, endMs int64, dst string) error {
	if endMs <= startMs {
		return services.Wrap(services.ErrValidation, "media", "extract", fmt.Sprintf("range end %dms before start %dms", endMs, startMs), nil)
	}
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(startMs),
		"-to", formatSeconds(endMs),
		"-i", src,
		"-c", "copy",
		dst,
	}
	if _, err := f.run(ctx, f.ffmpegBin, args...); err != nil {
		return services.Wrap(services.ErrCompose, "media", "extract", "extract range", err)
	}
	return nil
}

// ExtractVocals writes a mono 16kHz PCM track suitable for speech recognition.
func (f *FFmpeg) ExtractVocals(ctx context.Context, src, dst string) error {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", src,
		"-vn", "-sn", "-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dst,
	}
	if _, err := f.run(ctx, f.ffmpegBin, args...); err != nil {
		return services.Wrap(services.ErrCompose, "media", "extract", "extract vocal track", err)
	}
	return nil
}

// Compose renders a slideshow or concatenation per the request. Output is
// written to a temporary sibling first and renamed into place on success.
func (f *FFmpeg) Compose(ctx context.Context, req ComposeRequest) (ComposeResult, error) {
	if len(req.Inputs) == 0 {
		return ComposeResult{}, services.Wrap(services.ErrValidation, "media", "compose", "no inputs", nil)
	}
	if req.OutputPath == "" {
		return ComposeResult{}, services.Wrap(services.ErrValidation, "media", "compose", "missing output path", nil)
	}

	tmpPath := req.OutputPath + ".part" + filepath.Ext(req.OutputPath)
	defer os.Remove(tmpPath)

	var args []string
	var cleanup func()
	var err error
	switch req.Kind {
	case KindSlideshow:
		args, err = f.slideshowArgs(ctx, req, tmpPath)
	case KindConcat:
		args, cleanup, err = f.concatArgs(req, tmpPath)
	default:
		err = services.Wrap(services.ErrValidation, "media", "compose", fmt.Sprintf("unknown compose kind %q", req.Kind), nil)
	}
	if err != nil {
		return ComposeResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	f.logger.Debug("composing media",
		logging.String("kind", string(req.Kind)),
		logging.Int("inputs", len(req.Inputs)),
		logging.String("output", req.OutputPath))

	totalMs, probeErr := f.composeDurationMs(ctx, req)
	if err := f.runWithProgress(ctx, args, totalMs, req.Progress); err != nil {
		return ComposeResult{}, services.Wrap(services.ErrCompose, "media", "compose", string(req.Kind)+" render", err)
	}
	if err := os.Rename(tmpPath, req.OutputPath); err != nil {
		return ComposeResult{}, services.Wrap(services.ErrCompose, "media", "compose", "finalize output", err)
	}

	durationMs, err := f.ProbeDurationMs(ctx, req.OutputPath)
	if err != nil {
		if probeErr == nil {
			durationMs = totalMs
		} else {
			return ComposeResult{}, err
		}
	}
	if req.Progress != nil {
		req.Progress(100)
	}
	return ComposeResult{OutputFile: req.OutputPath, DurationMs: durationMs}, nil
}

// slideshowArgs builds a still-image slideshow over the replacement audio
// track. Each image holds an equal share of the audio duration.
func (f *FFmpeg) slideshowArgs(ctx context.Context, req ComposeRequest, outPath string) ([]string, error) {
	if req.ReplaceAudio == "" {
		return nil, services.Wrap(services.ErrValidation, "media", "compose", "slideshow requires an audio track", nil)
	}
	audioMs, err := f.ProbeDurationMs(ctx, req.ReplaceAudio)
	if err != nil {
		return nil, err
	}
	perImageMs := audioMs / int64(len(req.Inputs))
	if perImageMs <= 0 {
		return nil, services.Wrap(services.ErrValidation, "media", "compose", "audio too short for image count", nil)
	}
	return f.buildSlideshowArgs(req, perImageMs, outPath), nil
}

func (f *FFmpeg) buildSlideshowArgs(req ComposeRequest, perImageMs int64, outPath string) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-progress", "pipe:1", "-nostats"}
	for _, image := range req.Inputs {
		args = append(args, "-loop", "1", "-t", formatSeconds(perImageMs), "-i", image)
	}
	args = append(args, "-i", req.ReplaceAudio)

	var filter strings.Builder
	for i := range req.Inputs {
		fmt.Fprintf(&filter, "[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1[v%d];",
			i, f.frameWidth, f.frameHeight, f.frameWidth, f.frameHeight, i)
	}
	for i := range req.Inputs {
		fmt.Fprintf(&filter, "[v%d]", i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=1:a=0[video]", len(req.Inputs))
	videoLabel := "[video]"
	if drawtext := DrawtextFilter(req.Overlays); drawtext != "" {
		fmt.Fprintf(&filter, ";[video]%s[outv]", drawtext)
		videoLabel = "[outv]"
	}

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", videoLabel,
		"-map", fmt.Sprintf("%d:a", len(req.Inputs)),
		"-c:v", "libx264",
		"-preset", f.preset,
		"-r", strconv.Itoa(f.frameRate),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		"-movflags", "+faststart",
		outPath,
	)
	return args
}

// concatArgs joins video clips via the concat demuxer. Plain joins stream
// copy; overlays or audio replacement force a re-encode.
func (f *FFmpeg) concatArgs(req ComposeRequest, outPath string) ([]string, func(), error) {
	listPath := outPath + ".txt"
	var list strings.Builder
	for _, input := range req.Inputs {
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(input, "'", `'\''`))
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return nil, nil, services.Wrap(services.ErrCompose, "media", "compose", "write concat list", err)
	}
	cleanup := func() { os.Remove(listPath) }

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error", "-progress", "pipe:1", "-nostats",
		"-f", "concat", "-safe", "0", "-i", listPath,
	}
	drawtext := DrawtextFilter(req.Overlays)
	if drawtext == "" && req.ReplaceAudio == "" {
		args = append(args, "-c", "copy", "-movflags", "+faststart", outPath)
		return args, cleanup, nil
	}

	if req.ReplaceAudio != "" {
		args = append(args, "-i", req.ReplaceAudio)
	}
	if drawtext != "" {
		args = append(args, "-vf", drawtext)
	}
	args = append(args, "-c:v", "libx264", "-preset", f.preset, "-pix_fmt", "yuv420p")
	if req.ReplaceAudio != "" {
		args = append(args, "-map", "0:v:0", "-map", "1:a:0", "-shortest")
	}
	args = append(args, "-c:a", "aac", "-movflags", "+faststart", outPath)
	return args, cleanup, nil
}

func (f *FFmpeg) composeDurationMs(ctx context.Context, req ComposeRequest) (int64, error) {
	if req.ReplaceAudio != "" {
		return f.ProbeDurationMs(ctx, req.ReplaceAudio)
	}
	var total int64
	for _, input := range req.Inputs {
		ms, err := f.ProbeDurationMs(ctx, input)
		if err != nil {
			return 0, err
		}
		total += ms
	}
	return total, nil
}

// runWithProgress launches ffmpeg and feeds out_time_ms lines from the
// -progress stream into the callback as a percentage capped at 99. The
// final 100 is reported by Compose after the rename.
func (f *FFmpeg) runWithProgress(ctx context.Context, args []string, totalMs int64, progress func(percent int)) error {
	cmd := exec.CommandContext(ctx, f.ffmpegBin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return err
	}

	f.consumeProgress(stdout, totalMs, progress)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tailOf(stderr.String()))
	}
	return nil
}

func (f *FFmpeg) consumeProgress(r io.Reader, totalMs int64, progress func(percent int)) {
	scanner := bufio.NewScanner(r)
	lastPercent := -1
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		value, ok := strings.CutPrefix(line, "out_time_ms=")
		if !ok {
			continue
		}
		if progress == nil || totalMs <= 0 {
			continue
		}
		outUs, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		percent := int(outUs / 1000 * 100 / totalMs)
		if percent > 99 {
			percent = 99
		}
		if percent > lastPercent {
			lastPercent = percent
			progress(percent)
		}
	}
}

func tailOf(output string) string {
	output = strings.TrimSpace(output)
	lines := strings.Split(output, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
