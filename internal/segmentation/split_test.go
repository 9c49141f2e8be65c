package segmentation_test

import (
	"math"
	"testing"

	"clipforge/internal/segmentation"
)

func TestSplitSnapsToSilenceMidpoints(t *testing.T) {
	silences := []segmentation.SilenceInterval{
		{StartMs: 2700, EndMs: 2900},
		{StartMs: 5800, EndMs: 6000},
	}
	boundaries, err := segmentation.Split(21000, silences, 3, segmentation.Options{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := []int64{0, 2800, 5900, 21000}
	if len(boundaries) != len(want) {
		t.Fatalf("expected %d boundaries, got %v", len(want), boundaries)
	}
	for i := range want {
		if boundaries[i] != want[i] {
			t.Fatalf("boundary %d: expected %d, got %v", i, want[i], boundaries)
		}
	}
}

func TestSplitNoSilenceFallsBackToUniform(t *testing.T) {
	boundaries, err := segmentation.Split(10000, nil, 4, segmentation.Options{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := []float64{0, 2500, 5000, 7500, 10000}
	for i := range want {
		if math.Abs(float64(boundaries[i])-want[i]) > 1 {
			t.Fatalf("boundary %d: expected ~%f, got %v", i, want[i], boundaries)
		}
	}
}

func TestSplitAlwaysReturnsRequestedParts(t *testing.T) {
	silences := []segmentation.SilenceInterval{
		{StartMs: 100, EndMs: 120},
		{StartMs: 130, EndMs: 150},
		{StartMs: 160, EndMs: 180},
		{StartMs: 50000, EndMs: 50400},
	}
	for parts := 2; parts <= 100; parts++ {
		boundaries, err := segmentation.Split(60000, silences, parts, segmentation.Options{})
		if err != nil {
			t.Fatalf("Split(%d parts) failed: %v", parts, err)
		}
		if len(boundaries) != parts+1 {
			t.Fatalf("expected %d boundaries for %d parts, got %d", parts+1, parts, len(boundaries))
		}
		if boundaries[0] != 0 {
			t.Fatalf("first boundary must be 0, got %d", boundaries[0])
		}
		if boundaries[len(boundaries)-1] != 60000 {
			t.Fatalf("last boundary must equal duration, got %d", boundaries[len(boundaries)-1])
		}
		for i := 1; i < len(boundaries); i++ {
			if boundaries[i] <= boundaries[i-1] {
				t.Fatalf("%d parts: boundaries not strictly increasing: %v", parts, boundaries)
			}
		}
	}
}

func TestSplitCollisionClampsForward(t *testing.T) {
	// Two silences close together snap adjacent boundaries; the second must
	// clamp forward rather than collapsing a segment.
	silences := []segmentation.SilenceInterval{
		{StartMs: 4900, EndMs: 5100},
		{StartMs: 4950, EndMs: 5050},
	}
	boundaries, err := segmentation.Split(15000, silences, 3, segmentation.Options{MinSegmentMs: 300})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(boundaries) != 4 {
		t.Fatalf("expected 4 boundaries, got %v", boundaries)
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			t.Fatalf("boundaries not strictly increasing: %v", boundaries)
		}
	}
	if boundaries[2] != boundaries[1]+300 {
		t.Fatalf("expected collision clamp to prev+300, got %v", boundaries)
	}
}

func TestSplitPrefersClosestMidpointWhenSlotsContended(t *testing.T) {
	// With a single internal cut both silences compete for it; the one
	// nearest the ideal cut (10500) must win.
	silences := []segmentation.SilenceInterval{
		{StartMs: 2700, EndMs: 2900},
		{StartMs: 5800, EndMs: 6000},
	}
	boundaries, err := segmentation.Split(21000, silences, 2, segmentation.Options{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if boundaries[1] != 5900 {
		t.Fatalf("expected closest midpoint 5900, got %v", boundaries)
	}
}

func TestSplitValidatesPartRange(t *testing.T) {
	for _, parts := range []int{-1, 0, 1, 101} {
		if _, err := segmentation.Split(10000, nil, parts, segmentation.Options{}); err == nil {
			t.Fatalf("expected validation error for %d parts", parts)
		}
	}
	if _, err := segmentation.Split(0, nil, 2, segmentation.Options{}); err == nil {
		t.Fatal("expected validation error for zero duration")
	}
}

func TestSplitDeterministic(t *testing.T) {
	silences := []segmentation.SilenceInterval{
		{StartMs: 1000, EndMs: 1400},
		{StartMs: 7000, EndMs: 7200},
		{StartMs: 13000, EndMs: 13600},
	}
	first, err := segmentation.Split(20000, silences, 4, segmentation.Options{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	second, err := segmentation.Split(20000, silences, 4, segmentation.Options{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic boundaries: %v vs %v", first, second)
		}
	}
}
