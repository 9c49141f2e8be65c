package alignment

import (
	"fmt"
	"strings"
)

// RenderSRT renders display lines as a SubRip subtitle document with
// 1-indexed cues.
func RenderSRT(lines []Line) string {
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(line.StartMs), srtTimestamp(line.EndMs), line.Text)
	}
	return b.String()
}

func srtTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
