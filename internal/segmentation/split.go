package segmentation

import (
	"fmt"
	"math"

	"clipforge/internal/services"
)

// SilenceInterval is a time range where audio energy sits below the detection
// threshold. Midpoints of these ranges are the preferred cut points.
type SilenceInterval struct {
	StartMs int64
	EndMs   int64
}

// Midpoint returns the center of the interval.
func (s SilenceInterval) Midpoint() int64 {
	return (s.StartMs + s.EndMs) / 2
}

// Options tunes boundary placement. Zero values fall back to package defaults.
type Options struct {
	// MaxParts is the validation ceiling for requested part counts.
	MaxParts int
	// MinSegmentMs is the floor applied when a snapped boundary would collide
	// with the previous one.
	MinSegmentMs int64
}

const (
	defaultMaxParts     = 100
	defaultMinSegmentMs = 300
)

func (o Options) withDefaults() Options {
	if o.MaxParts <= 0 {
		o.MaxParts = defaultMaxParts
	}
	if o.MinSegmentMs <= 0 {
		o.MinSegmentMs = defaultMinSegmentMs
	}
	return o
}

// Split computes cut points for dividing durationMs into requestedParts
// segments, preferring silence midpoints near each ideal uniform cut.
//
// The result always holds requestedParts+1 strictly increasing boundaries,
// starting at 0 and ending at durationMs. Silences are matched to boundaries
// in chronological order, each to the boundary whose ideal cut is nearest;
// boundaries left without a silence fall back to the ideal cut, and any
// collision with the previous boundary is resolved by clamping forward.
func Split(durationMs int64, silences []SilenceInterval, requestedParts int, opts Options) ([]int64, error) {
	opts = opts.withDefaults()

	if durationMs <= 0 {
		return nil, services.Wrap(services.ErrValidation, "segmentation", "split", "duration must be positive", nil)
	}
	if requestedParts < 2 || requestedParts > opts.MaxParts {
		return nil, services.Wrap(services.ErrValidation, "segmentation", "split",
			fmt.Sprintf("requested parts must be between 2 and %d, got %d", opts.MaxParts, requestedParts), nil)
	}

	idealStep := float64(durationMs) / float64(requestedParts)
	internal := requestedParts - 1

	// Chronological assignment: each silence claims the boundary whose ideal
	// cut is closest, spilling forward when that slot is already taken.
	// Nearest-ideal index is monotone in the midpoint, so assigned indices
	// stay strictly increasing.
	assigned := make([]int64, internal+1)
	for i := range assigned {
		assigned[i] = -1
	}
	next := 1
	for _, silence := range silences {
		mid := silence.Midpoint()
		if mid <= 0 || mid >= durationMs {
			continue
		}
		target := int(math.Round(float64(mid) / idealStep))
		if target < 1 {
			target = 1
		}
		if target > internal {
			target = internal
		}
		if target < next {
			target = next
		}
		if target <= internal {
			assigned[target] = mid
			next = target + 1
			continue
		}
		// Every slot is taken; keep whichever midpoint sits closer to the
		// final slot's ideal cut.
		ideal := float64(internal) * idealStep
		if math.Abs(float64(mid)-ideal) < math.Abs(float64(assigned[internal])-ideal) {
			assigned[internal] = mid
		}
	}

	boundaries := make([]int64, 0, requestedParts+1)
	boundaries = append(boundaries, 0)
	for i := 1; i <= internal; i++ {
		cut := assigned[i]
		if cut < 0 {
			cut = int64(math.Round(float64(i) * idealStep))
		}
		prev := boundaries[len(boundaries)-1]
		if cut <= prev {
			cut = prev + opts.MinSegmentMs
		}
		// Leave at least 1ms of room per remaining boundary so the tail of
		// the sequence can stay strictly increasing.
		if ceiling := durationMs - int64(requestedParts-i); cut > ceiling {
			cut = ceiling
		}
		boundaries = append(boundaries, cut)
	}
	boundaries = append(boundaries, durationMs)

	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			return nil, services.Wrap(services.ErrValidation, "segmentation", "split",
				fmt.Sprintf("duration %dms too short for %d parts", durationMs, requestedParts), nil)
		}
	}
	return boundaries, nil
}
