package overlay

import (
	"strings"

	"clipforge/internal/services"
)

// Alignment selects how an overlay is positioned horizontally.
type Alignment string

const (
	AlignCenter Alignment = "center"
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
)

// Style captures the text rendering options for an overlay.
type Style struct {
	FontSize    int
	FontColor   string
	StrokeColor string
	StrokeWidth int
	Background  string
	Padding     int
	BorderWidth int
}

// Spec is a timed, styled text region to composite onto video frames.
// X is ignored when Auto is set; Y is always the block anchor.
type Spec struct {
	Text    string
	StartMs int64
	EndMs   int64
	X       int
	Y       int
	Auto    bool
	Align   Alignment
	Style   Style
}

// Validate rejects specs with degenerate time windows or empty text.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return services.Wrap(services.ErrValidation, "overlay", "validate", "overlay text must not be empty", nil)
	}
	if s.EndMs <= s.StartMs {
		return services.Wrap(services.ErrValidation, "overlay", "validate", "overlay window end must be after start", nil)
	}
	return nil
}
