package alignment

import (
	"strings"

	"clipforge/internal/overlay"
)

// OverlayMode selects how aligned words become overlay windows.
type OverlayMode string

const (
	// OverlayModeLine accumulates words within a display line: each window
	// shows the line text revealed up to the current word.
	OverlayModeLine OverlayMode = "line"
	// OverlayModeWord shows one word at a time, each replacing the last.
	OverlayModeWord OverlayMode = "word"
)

// OverlayOptions shapes the generated overlay specs.
type OverlayOptions struct {
	Mode         OverlayMode
	WordsPerLine int
	Style        overlay.Style
	AnchorY      int
}

// BuildOverlays turns aligned words into an ordered sequence of overlay specs
// with contiguous, non-overlapping windows covering the full aligned span.
// Gaps between recognized words are absorbed by extending each window to the
// start of the next.
func BuildOverlays(words []AlignedWord, opts OverlayOptions) []overlay.Spec {
	if len(words) == 0 {
		return nil
	}
	if opts.WordsPerLine <= 0 {
		opts.WordsPerLine = 3
	}

	boundaries := windowBoundaries(words)
	specs := make([]overlay.Spec, 0, len(words))
	for i, word := range words {
		text := word.DisplayText
		if opts.Mode == OverlayModeLine {
			lineStart := (i / opts.WordsPerLine) * opts.WordsPerLine
			parts := make([]string, 0, opts.WordsPerLine)
			for _, w := range words[lineStart : i+1] {
				parts = append(parts, w.DisplayText)
			}
			text = strings.Join(parts, " ")
		}
		specs = append(specs, overlay.Spec{
			Text:    text,
			StartMs: boundaries[i],
			EndMs:   boundaries[i+1],
			Y:       opts.AnchorY,
			Auto:    true,
			Align:   overlay.AlignCenter,
			Style:   opts.Style,
		})
	}
	return specs
}

// windowBoundaries returns len(words)+1 monotone boundaries: each word's
// window runs from its own start (or the previous boundary if later) to the
// next word's start, with the final window closing at the last word's end.
func windowBoundaries(words []AlignedWord) []int64 {
	boundaries := make([]int64, len(words)+1)
	boundaries[0] = words[0].StartMs
	for i := 1; i < len(words); i++ {
		boundaries[i] = words[i].StartMs
		if boundaries[i] < boundaries[i-1] {
			boundaries[i] = boundaries[i-1]
		}
	}
	boundaries[len(words)] = words[len(words)-1].EndMs
	if last := len(words); boundaries[last] <= boundaries[last-1] {
		boundaries[last] = boundaries[last-1] + 1
	}
	return boundaries
}

// Line is a display line of grouped aligned words.
type Line struct {
	Text    string
	StartMs int64
	EndMs   int64
}

// Lines groups aligned words into display lines of wordsPerLine words.
func Lines(words []AlignedWord, wordsPerLine int) []Line {
	if wordsPerLine <= 0 {
		wordsPerLine = 3
	}
	var lines []Line
	for start := 0; start < len(words); start += wordsPerLine {
		end := start + wordsPerLine
		if end > len(words) {
			end = len(words)
		}
		parts := make([]string, 0, end-start)
		for _, w := range words[start:end] {
			parts = append(parts, w.DisplayText)
		}
		lines = append(lines, Line{
			Text:    strings.Join(parts, " "),
			StartMs: words[start].StartMs,
			EndMs:   words[end-1].EndMs,
		})
	}
	return lines
}
