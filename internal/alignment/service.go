package alignment

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/fileutil"
	"clipforge/internal/logging"
	"clipforge/internal/overlay"
	"clipforge/internal/services"
)

// Transcriber is the speech timestamp adapter contract.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]RecognizedWord, error)
}

// VocalExtractor prepares a mono speech track from an arbitrary media file
// before recognition. Optional; without one the source is transcribed as-is.
type VocalExtractor interface {
	ExtractVocals(ctx context.Context, src, dst string) error
}

// KaraokeResult carries everything the karaoke flow produces.
type KaraokeResult struct {
	Words    []AlignedWord
	Mode     Mode
	Lines    []Line
	Overlays []overlay.Spec
	SRTPath  string
}

// Service runs the karaoke alignment flow: transcribe, align against the
// optional script, group into lines and overlay windows, write an SRT.
type Service struct {
	transcriber Transcriber
	extractor   VocalExtractor
	opts        OverlayOptions
	logger      *slog.Logger
}

// NewService wires a karaoke alignment service. extractor may be nil.
func NewService(transcriber Transcriber, extractor VocalExtractor, opts OverlayOptions, logger *slog.Logger) *Service {
	return &Service{
		transcriber: transcriber,
		extractor:   extractor,
		opts:        opts,
		logger:      logging.NewComponentLogger(logger, "alignment"),
	}
}

// Karaoke transcribes audioPath, aligns the optional script, and writes the
// resulting subtitle file next to outDir.
func (s *Service) Karaoke(ctx context.Context, audioPath, script string, mode OverlayMode, outDir string) (KaraokeResult, error) {
	var result KaraokeResult

	speechPath := audioPath
	if s.extractor != nil {
		base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
		wav := filepath.Join(outDir, base+"_speech.wav")
		if err := s.extractor.ExtractVocals(ctx, audioPath, wav); err != nil {
			return result, services.Wrap(services.ErrCompose, "alignment", "extract vocals", "could not prepare speech track", err)
		}
		defer os.Remove(wav)
		speechPath = wav
	}

	recognized, err := s.transcriber.Transcribe(ctx, speechPath)
	if err != nil {
		return result, services.Wrap(services.ErrTranscribe, "alignment", "transcribe", "speech recognition failed", err)
	}
	if len(recognized) == 0 {
		return result, services.Wrap(services.ErrTranscribe, "alignment", "transcribe", "no words recognized in audio", nil)
	}

	words, alignMode := Align(recognized, script)
	s.logger.Info("alignment finished",
		logging.String("mode", string(alignMode)),
		logging.Int("recognized_words", len(recognized)),
		logging.Int("aligned_words", len(words)),
	)

	opts := s.opts
	if mode != "" {
		opts.Mode = mode
	}

	result.Words = words
	result.Mode = alignMode
	result.Lines = Lines(words, opts.WordsPerLine)
	result.Overlays = BuildOverlays(words, opts)

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	srtPath := filepath.Join(outDir, base+".srt")
	if err := fileutil.WriteAtomic(srtPath, []byte(RenderSRT(result.Lines)), 0o644); err != nil {
		return result, services.Wrap(services.ErrCompose, "alignment", "write srt", "could not write subtitle file", err)
	}
	result.SRTPath = srtPath

	return result, nil
}
