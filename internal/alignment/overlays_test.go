package alignment_test

import (
	"strings"
	"testing"

	"clipforge/internal/alignment"
	"clipforge/internal/overlay"
)

func alignedFour() []alignment.AlignedWord {
	return []alignment.AlignedWord{
		{DisplayText: "never", StartMs: 0, EndMs: 400},
		{DisplayText: "gonna", StartMs: 500, EndMs: 900},
		{DisplayText: "give", StartMs: 900, EndMs: 1200},
		{DisplayText: "you", StartMs: 1300, EndMs: 1600},
	}
}

func TestBuildOverlaysWordMode(t *testing.T) {
	specs := alignment.BuildOverlays(alignedFour(), alignment.OverlayOptions{
		Mode:         alignment.OverlayModeWord,
		WordsPerLine: 2,
		AnchorY:      620,
	})
	if len(specs) != 4 {
		t.Fatalf("expected one spec per word, got %d", len(specs))
	}
	for i, spec := range specs {
		if spec.Text != alignedFour()[i].DisplayText {
			t.Fatalf("spec %d: expected single word text, got %q", i, spec.Text)
		}
		if i > 0 && spec.StartMs != specs[i-1].EndMs {
			t.Fatalf("spec %d: windows not contiguous: %d != %d", i, spec.StartMs, specs[i-1].EndMs)
		}
		if spec.EndMs <= spec.StartMs {
			t.Fatalf("spec %d: degenerate window %+v", i, spec)
		}
	}
	if specs[0].StartMs != 0 || specs[3].EndMs != 1600 {
		t.Fatalf("expected overlays to cover full aligned span, got %+v", specs)
	}
}

func TestBuildOverlaysLineModeAccumulates(t *testing.T) {
	specs := alignment.BuildOverlays(alignedFour(), alignment.OverlayOptions{
		Mode:         alignment.OverlayModeLine,
		WordsPerLine: 2,
	})
	wantTexts := []string{"never", "never gonna", "give", "give you"}
	for i, spec := range specs {
		if spec.Text != wantTexts[i] {
			t.Fatalf("spec %d: expected %q, got %q", i, wantTexts[i], spec.Text)
		}
	}
}

func TestLinesGrouping(t *testing.T) {
	lines := alignment.Lines(alignedFour(), 3)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "never gonna give" {
		t.Fatalf("unexpected first line %q", lines[0].Text)
	}
	if lines[0].StartMs != 0 || lines[0].EndMs != 1200 {
		t.Fatalf("unexpected first line window %+v", lines[0])
	}
	if lines[1].Text != "you" {
		t.Fatalf("unexpected second line %q", lines[1].Text)
	}
}

func TestRenderSRT(t *testing.T) {
	lines := []alignment.Line{
		{Text: "never gonna give", StartMs: 0, EndMs: 1200},
		{Text: "you up", StartMs: 1300, EndMs: 3_725_042},
	}
	rendered := alignment.RenderSRT(lines)
	want := "1\n00:00:00,000 --> 00:00:01,200\nnever gonna give\n\n" +
		"2\n00:00:01,300 --> 01:02:05,042\nyou up\n\n"
	if rendered != want {
		t.Fatalf("unexpected SRT output:\n%q\nwant:\n%q", rendered, want)
	}
}

func TestBuildOverlaysSpecsValidate(t *testing.T) {
	specs := alignment.BuildOverlays(alignedFour(), alignment.OverlayOptions{
		Mode:         alignment.OverlayModeLine,
		WordsPerLine: 2,
		Style:        overlay.Style{FontSize: 40, Padding: 20},
		AnchorY:      620,
	})
	if _, err := overlay.Resolve(specs, 1280, 720); err != nil {
		t.Fatalf("generated specs should resolve cleanly: %v", err)
	}
	joined := make([]string, 0, len(specs))
	for _, s := range specs {
		joined = append(joined, s.Text)
	}
	if !strings.Contains(strings.Join(joined, "|"), "never gonna") {
		t.Fatalf("expected accumulated text in %v", joined)
	}
}
