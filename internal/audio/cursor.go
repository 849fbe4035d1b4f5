// Package audio lays the music track under the montage, one mixed track per segment.
package audio

import "math"

// sliceEpsilon keeps float error from demanding an extra copy of the music.
const sliceEpsilon = 1e-9

// Cursor is how many seconds of music the montage has consumed so far.
// It only moves forward, through Advance.
type Cursor struct {
	consumed float64
}

// Seconds is the total music time consumed, not wrapped.
func (c Cursor) Seconds() float64 { return c.consumed }

// Advance returns the cursor moved forward by d seconds.
func (c Cursor) Advance(d float64) Cursor {
	if d < 0 {
		d = 0
	}
	return Cursor{consumed: c.consumed + d}
}

// Position is the cursor wrapped into a track of musicDur seconds.
func (c Cursor) Position(musicDur float64) float64 {
	if musicDur <= 0 {
		return 0
	}
	return math.Mod(c.consumed, musicDur)
}

// Slice is the stretch of music laid under one segment. Copies of the track
// are laid end to end so that [LoopStart, LoopStart+Duration] is covered.
type Slice struct {
	LoopStart float64 `yaml:"loop_start"`
	Duration  float64 `yaml:"duration"`
	Copies    int     `yaml:"copies"`
}

// Wraps reports whether the slice runs past the end of the first copy.
func (s Slice) Wraps() bool { return s.Copies > 1 }

// PlanSlice picks the music for a segment of dur seconds starting at cur.
func PlanSlice(cur Cursor, dur, musicDur float64) Slice {
	start := cur.Position(musicDur)
	copies := 1
	if musicDur > 0 {
		copies = int(math.Ceil((start+dur)/musicDur - sliceEpsilon))
	}
	if copies < 1 {
		copies = 1
	}
	return Slice{LoopStart: start, Duration: dur, Copies: copies}
}
