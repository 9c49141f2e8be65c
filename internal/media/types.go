package media

import (
	"context"

	"clipforge/internal/overlay"
)

// ComposeKind selects the composition pipeline.
type ComposeKind string

const (
	// KindSlideshow turns still images plus an audio track into a video,
	// splitting the audio duration evenly across the images.
	KindSlideshow ComposeKind = "slideshow"
	// KindConcat joins video clips in order, optionally replacing the audio
	// track and burning in text overlays.
	KindConcat ComposeKind = "concat"
)

// ComposeRequest describes one composition. Inputs are ordered local file
// paths; the engine never fetches.
type ComposeRequest struct {
	Kind         ComposeKind
	Inputs       []string
	ReplaceAudio string
	Overlays     []overlay.Placement
	OutputPath   string
	// Progress, when set, receives encode percentages in [0,100]. Calls are
	// monotonically non-decreasing for one request.
	Progress func(percent int)
}

// ComposeResult is the finished output with probed metadata.
type ComposeResult struct {
	OutputFile string
	DurationMs int64
}

// Engine is the narrow contract the orchestrator and engines depend on; the
// production implementation shells out to ffmpeg, tests substitute fakes.
type Engine interface {
	Compose(ctx context.Context, req ComposeRequest) (ComposeResult, error)
	ProbeDurationMs(ctx context.Context, path string) (int64, error)
	ExtractRange(ctx context.Context, src string, startMs, endMs int64, dst string) error
	ExtractVocals(ctx context.Context, src, dst string) error
}
