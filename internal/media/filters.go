package media

import (
	"fmt"
	"strings"

	"clipforge/internal/overlay"
)

var drawtextEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
	`%`, `\%`,
)

// EscapeDrawtext escapes text for embedding in an ffmpeg drawtext filter.
func EscapeDrawtext(text string) string {
	return drawtextEscaper.Replace(text)
}

// DrawtextFilter renders resolved overlay placements as a chain of drawtext
// filters. Each placed line becomes one filter with a between(t,..) enable
// window so the text appears only inside its overlay window.
func DrawtextFilter(placements []overlay.Placement) string {
	var filters []string
	for _, placement := range placements {
		for _, line := range placement.Lines {
			var b strings.Builder
			fmt.Fprintf(&b, "drawtext=text='%s'", EscapeDrawtext(line.Text))
			fmt.Fprintf(&b, ":x=%d:y=%d", line.X, line.Y)
			fmt.Fprintf(&b, ":fontsize=%d", placement.Style.FontSize)
			if placement.Style.FontColor != "" {
				fmt.Fprintf(&b, ":fontcolor=%s", placement.Style.FontColor)
			}
			if placement.Style.StrokeWidth > 0 && placement.Style.StrokeColor != "" {
				fmt.Fprintf(&b, ":borderw=%d:bordercolor=%s", placement.Style.StrokeWidth, placement.Style.StrokeColor)
			}
			if placement.Style.Background != "" {
				fmt.Fprintf(&b, ":box=1:boxcolor=%s", placement.Style.Background)
				if placement.Style.Padding > 0 {
					fmt.Fprintf(&b, ":boxborderw=%d", placement.Style.Padding)
				}
			}
			fmt.Fprintf(&b, ":enable='between(t,%s,%s)'", formatSeconds(placement.StartMs), formatSeconds(placement.EndMs))
			filters = append(filters, b.String())
		}
	}
	return strings.Join(filters, ",")
}

func formatSeconds(ms int64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", float64(ms)/1000.0), "0"), ".")
}
