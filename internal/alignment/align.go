package alignment

import (
	"math"
	"strings"
)

// RecognizedWord is one word from the speech timestamp adapter, immutable
// once obtained.
type RecognizedWord struct {
	Text    string
	StartMs int64
	EndMs   int64
}

// AlignedWord is the output unit of alignment. DisplayText may differ from
// the recognized text when a user script was supplied.
type AlignedWord struct {
	DisplayText string
	StartMs     int64
	EndMs       int64
}

// Mode names the alignment path that produced a result. Proportional is a
// quality degradation, not a failure, and is surfaced so callers can flag it.
type Mode string

const (
	// ModePassthrough means no script was supplied; recognized text is used.
	ModePassthrough Mode = "passthrough"
	// ModeZip means the script token count matched and timings were zipped
	// by position.
	ModeZip Mode = "zip"
	// ModeProportional means token counts differed and script tokens were
	// re-timed proportionally across the recognized span.
	ModeProportional Mode = "proportional"
)

// Align reconciles a user script against recognized word timestamps.
//
// Without a script the recognized words pass through unchanged. When the
// script tokenizes to the same count, tokens replace recognized text by
// position because timing is trustworthy while transcription spelling may
// not be. On a count mismatch, tokens are spread across the full recognized
// span with widths proportional to their rune length; this never fails.
func Align(recognized []RecognizedWord, script string) ([]AlignedWord, Mode) {
	tokens := strings.Fields(script)
	if len(tokens) == 0 {
		aligned := make([]AlignedWord, 0, len(recognized))
		for _, word := range recognized {
			aligned = append(aligned, AlignedWord{DisplayText: word.Text, StartMs: word.StartMs, EndMs: word.EndMs})
		}
		return aligned, ModePassthrough
	}

	if len(tokens) == len(recognized) {
		aligned := make([]AlignedWord, 0, len(recognized))
		for i, word := range recognized {
			aligned = append(aligned, AlignedWord{DisplayText: tokens[i], StartMs: word.StartMs, EndMs: word.EndMs})
		}
		return aligned, ModeZip
	}

	return redistribute(recognized, tokens), ModeProportional
}

// redistribute lays script tokens across [firstStart, lastEnd] with window
// widths proportional to token rune length. Windows are contiguous and
// non-overlapping; cumulative rounding keeps the final window ending exactly
// at the recognized end.
func redistribute(recognized []RecognizedWord, tokens []string) []AlignedWord {
	if len(recognized) == 0 {
		return nil
	}

	firstStart := recognized[0].StartMs
	lastEnd := recognized[len(recognized)-1].EndMs
	span := float64(lastEnd - firstStart)

	totalLen := 0
	for _, token := range tokens {
		totalLen += len([]rune(token))
	}
	if totalLen == 0 {
		return nil
	}

	aligned := make([]AlignedWord, 0, len(tokens))
	prefix := 0
	prevBoundary := firstStart
	for _, token := range tokens {
		prefix += len([]rune(token))
		boundary := firstStart + int64(math.Round(span*float64(prefix)/float64(totalLen)))
		if boundary < prevBoundary {
			boundary = prevBoundary
		}
		aligned = append(aligned, AlignedWord{DisplayText: token, StartMs: prevBoundary, EndMs: boundary})
		prevBoundary = boundary
	}
	aligned[len(aligned)-1].EndMs = lastEnd
	return aligned
}
