package overlay

import (
	"strings"
)

// PlacedLine is one rendered text line with final pixel geometry.
type PlacedLine struct {
	Text string
	X    int
	Y    int
}

// Placement is the resolved geometry for a single overlay spec. The time
// window and style are carried through unchanged so the media engine can
// consume placements directly.
type Placement struct {
	Lines       []PlacedLine
	StartMs     int64
	EndMs       int64
	BlockWidth  int
	BlockHeight int
	Style       Style
}

// Resolution is pure: identical specs and frame dimensions always produce
// identical geometry, and no placed line ever leaves the frame.

// Resolve computes final pixel geometry for each spec against the target
// frame. Center-aligned specs without an explicit position are centered on
// measured text width; text wider than the usable frame width is greedily
// wrapped and the resulting block is stacked from the anchor Y, clamped to
// stay inside the frame.
func Resolve(specs []Spec, frameWidth, frameHeight int) ([]Placement, error) {
	placements := make([]Placement, 0, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		placements = append(placements, resolveOne(spec, frameWidth, frameHeight))
	}
	return placements, nil
}

func resolveOne(spec Spec, frameWidth, frameHeight int) Placement {
	style := spec.Style
	usable := frameWidth - 2*style.Padding
	if usable < 1 {
		usable = frameWidth
	}

	lines := wrapText(spec.Text, usable, style.FontSize)
	lineHeight := LineHeight(style.FontSize)
	if maxLines := max(1, (frameHeight-2*style.Padding)/lineHeight); len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	blockWidth := 0
	for _, line := range lines {
		if w := TextWidth(line, style.FontSize); w > blockWidth {
			blockWidth = w
		}
	}
	blockHeight := lineHeight * len(lines)

	startY := spec.Y
	if startY+blockHeight > frameHeight-style.Padding {
		startY = frameHeight - style.Padding - blockHeight
	}
	if startY < style.Padding {
		startY = style.Padding
	}

	placed := make([]PlacedLine, 0, len(lines))
	for i, line := range lines {
		width := TextWidth(line, style.FontSize)
		var x int
		switch {
		case spec.Auto || spec.Align == AlignCenter:
			x = (frameWidth - width) / 2
		case spec.Align == AlignRight:
			x = frameWidth - style.Padding - width
		default:
			x = spec.X
		}
		x = clamp(x, 0, max(0, frameWidth-width))
		placed = append(placed, PlacedLine{Text: line, X: x, Y: startY + i*lineHeight})
	}

	return Placement{
		Lines:       placed,
		StartMs:     spec.StartMs,
		EndMs:       spec.EndMs,
		BlockWidth:  blockWidth,
		BlockHeight: blockHeight,
		Style:       style,
	}
}

// TextWidth estimates rendered width for a text run at the given font size.
// The renderer uses a fixed advance per rune so resolution stays deterministic
// without loading font metrics.
func TextWidth(text string, fontSize int) int {
	advance := fontSize * 3 / 5
	if advance < 1 {
		advance = 1
	}
	return len([]rune(text)) * advance
}

// LineHeight returns the vertical advance between stacked lines.
func LineHeight(fontSize int) int {
	h := fontSize * 6 / 5
	if h < 1 {
		h = 1
	}
	return h
}

// wrapText packs words greedily into lines no wider than maxWidth. A single
// word wider than maxWidth gets its own line rather than being split.
func wrapText(text string, maxWidth, fontSize int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if TextWidth(candidate, fontSize) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	lines = append(lines, current)
	return lines
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
