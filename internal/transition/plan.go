package transition

import "github.com/ivlev/killreel/internal/segment"

// Trim is how many frames a clip gives up at each end.
type Trim struct {
	Head int
	Tail int
}

// Body is the number of frames left between the trims.
func (t Trim) Body(frames int) int {
	return frames - t.Head - t.Tail
}

// Layout is the frame arithmetic of one stitch.
type Layout struct {
	Trims   []Trim // one per clip
	Budgets []int  // one per boundary, len(Trims)-1
}

// Plan distributes a budget of up to frames per boundary. Every clip keeps at
// least one body frame; an interior clip splits its spare frames between its
// head and tail, an end clip may spend all of them on its single boundary.
// Boundary i takes Budgets[i] frames from the tail of clip i and the same
// number from the head of clip i+1.
func Plan(clips []segment.Segment, frames int) Layout {
	n := len(clips)
	l := Layout{Trims: make([]Trim, n)}
	if n < 2 {
		return l
	}
	if frames < 0 {
		frames = 0
	}

	l.Budgets = make([]int, n-1)
	for i := range l.Budgets {
		b := min(frames, sideCapacity(clips, i, false), sideCapacity(clips, i+1, true))
		l.Budgets[i] = b
		l.Trims[i].Tail = b
		l.Trims[i+1].Head = b
	}
	return l
}

// sideCapacity is the most frames clip i can give to the boundary on its head
// (head == true) or tail side.
func sideCapacity(clips []segment.Segment, i int, head bool) int {
	spare := clips[i].Frames - 1
	if spare <= 0 {
		return 0
	}
	last := len(clips) - 1
	if (i == 0 && !head) || (i == last && head) {
		return spare
	}
	return spare / 2
}
