package clips

import (
	"fmt"
	"math"

	"github.com/ivlev/killreel/internal/events"
)

// frameEpsilon absorbs float error so that 1.4*30 lands on frame 42, not 41.
const frameEpsilon = 1e-6

// TimeRange is a span of source seconds, 0 <= Start <= End <= duration.
type TimeRange struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// FrameRange is a span of source frames, 0 <= Start <= End <= total-1.
// End is exclusive unless the range degenerated to a single frame (End == Start).
type FrameRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Count is the number of frames the range selects, never less than one.
func (r FrameRange) Count() int {
	if r.End <= r.Start {
		return 1
	}
	return r.End - r.Start
}

func (r FrameRange) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// RangeFor pads the group on the left by buffer seconds and clamps to the source.
func RangeFor(g events.Group, buffer, duration float64) TimeRange {
	start := math.Max(0, g.First()-buffer)
	end := g.Last()
	if duration > 0 && end > duration {
		end = duration
	}
	if start > end {
		start = end
	}
	return TimeRange{Start: start, End: end}
}

// Frames maps a time range onto frame indices of a source with totalFrames frames.
func Frames(tr TimeRange, fps float64, totalFrames int) FrameRange {
	last := totalFrames - 1
	if last < 0 {
		last = 0
	}
	start := clamp(int(math.Floor(tr.Start*fps+frameEpsilon)), 0, last)
	end := clamp(int(math.Floor(tr.End*fps+frameEpsilon)), 0, last)
	if start >= end {
		end = start
	}
	return FrameRange{Start: start, End: end}
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
