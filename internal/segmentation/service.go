package segmentation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// AudioCutter is the slice of the media engine the split flow needs.
type AudioCutter interface {
	ProbeDurationMs(ctx context.Context, path string) (int64, error)
	ExtractRange(ctx context.Context, src string, startMs, endMs int64, dst string) error
}

// Result describes a completed split: the boundary sequence and one audio
// file per segment.
type Result struct {
	DurationMs int64
	Boundaries []int64
	Segments   []string
}

// Service performs silence-aware audio splitting end to end: probe duration,
// detect silences, compute boundaries, cut segment files.
type Service struct {
	detector *Detector
	cutter   AudioCutter
	opts     Options
	logger   *slog.Logger
}

// NewService wires a split service from its collaborators.
func NewService(detector *Detector, cutter AudioCutter, opts Options, logger *slog.Logger) *Service {
	return &Service{
		detector: detector,
		cutter:   cutter,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "segmentation"),
	}
}

// SplitFile splits audioPath into requestedParts segment files under outDir.
func (s *Service) SplitFile(ctx context.Context, audioPath string, requestedParts int, outDir string) (Result, error) {
	var result Result

	durationMs, err := s.cutter.ProbeDurationMs(ctx, audioPath)
	if err != nil {
		return result, services.Wrap(services.ErrCompose, "segmentation", "probe", "could not read audio duration", err)
	}

	silences, err := s.detector.Detect(ctx, audioPath)
	if err != nil {
		return result, err
	}
	s.logger.Debug("silence detection finished",
		logging.Int("intervals", len(silences)),
		logging.Int64("duration_ms", durationMs),
	)

	boundaries, err := Split(durationMs, silences, requestedParts, s.opts)
	if err != nil {
		return result, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrCompose, "segmentation", "cut", "create output directory", err)
	}

	ext := filepath.Ext(audioPath)
	if ext == "" {
		ext = ".mp3"
	}
	base := filepath.Base(audioPath)
	base = base[:len(base)-len(ext)]

	segments := make([]string, 0, requestedParts)
	for i := 0; i+1 < len(boundaries); i++ {
		dst := filepath.Join(outDir, fmt.Sprintf("%s_part%02d%s", base, i+1, ext))
		if err := s.cutter.ExtractRange(ctx, audioPath, boundaries[i], boundaries[i+1], dst); err != nil {
			return result, services.Wrap(services.ErrCompose, "segmentation", "cut",
				fmt.Sprintf("extract segment %d", i+1), err)
		}
		segments = append(segments, dst)
	}

	s.logger.Info("split completed",
		logging.Int("parts", requestedParts),
		logging.Int64("duration_ms", durationMs),
	)

	return Result{DurationMs: durationMs, Boundaries: boundaries, Segments: segments}, nil
}
