package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipforge/internal/alignment"
	"clipforge/internal/services"
)

// WhisperX transcribes audio through the whisperx CLI launched via uvx and
// parses its word-level JSON output into millisecond timestamps.
type WhisperX struct {
	cfg           Config
	workDir       string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewWhisperX builds a transcriber that writes its output under workDir.
func NewWhisperX(cfg Config, workDir string) *WhisperX {
	return &WhisperX{cfg: cfg, workDir: workDir}
}

// WithCommandRunner sets a custom command runner (for testing).
func (w *WhisperX) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	w.commandRunner = runner
}

// Model returns the configured model name for logging.
func (w *WhisperX) Model() string {
	if w.cfg.Model != "" {
		return w.cfg.Model
	}
	return DefaultModel
}

// Transcribe runs word-level speech recognition against a prepared audio
// file and returns the recognized words in chronological order.
func (w *WhisperX) Transcribe(ctx context.Context, audioPath string) ([]alignment.RecognizedWord, error) {
	if audioPath == "" {
		return nil, services.Wrap(services.ErrValidation, "speech", "transcribe", "audio path required", nil)
	}
	outputDir := w.workDir
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTranscribe, "speech", "transcribe", "ensure output dir", err)
	}

	args := w.buildArgs(audioPath, outputDir)
	if err := w.run(ctx, UVXCommand, args...); err != nil {
		return nil, services.Wrap(services.ErrTranscribe, "speech", "transcribe", "whisperx", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	words, err := LoadWords(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscribe, "speech", "transcribe", "read whisperx output", err)
	}
	return words, nil
}

func (w *WhisperX) run(ctx context.Context, name string, args ...string) error {
	if w.commandRunner != nil {
		return w.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	// Force legacy behavior so bundled WhisperX binaries can load checkpoints safely.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (w *WhisperX) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 24)

	if w.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", w.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--beam_size", BeamSize,
		"--temperature", Temperature,
	)

	vadMethod := w.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && w.cfg.HFToken != "" {
		args = append(args, "--hf_token", w.cfg.HFToken)
	}

	if w.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

type payloadWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type payloadSegment struct {
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Words []payloadWord `json:"words"`
}

type whisperXPayload struct {
	Segments []payloadSegment `json:"segments"`
}

// LoadWords flattens a WhisperX JSON file into recognized words. WhisperX
// reports seconds as floats; timestamps convert to milliseconds here and
// stay integral for the rest of the pipeline. Words without timing (digits
// and other unalignable tokens) inherit the previous word's end time.
func LoadWords(jsonPath string) ([]alignment.RecognizedWord, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}

	var words []alignment.RecognizedWord
	var lastEnd int64
	for _, segment := range payload.Segments {
		for _, word := range segment.Words {
			text := strings.TrimSpace(word.Word)
			if text == "" {
				continue
			}
			startMs := int64(word.Start * 1000)
			endMs := int64(word.End * 1000)
			if endMs <= 0 {
				startMs = lastEnd
				endMs = lastEnd
			}
			if startMs < lastEnd {
				startMs = lastEnd
			}
			if endMs < startMs {
				endMs = startMs
			}
			words = append(words, alignment.RecognizedWord{Text: text, StartMs: startMs, EndMs: endMs})
			lastEnd = endMs
		}
	}
	return words, nil
}
