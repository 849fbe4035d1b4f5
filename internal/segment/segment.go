// Package segment holds the units that flow from the stitcher to the assembler.
package segment

import (
	"fmt"
	"sort"
	"sync"
)

// Kind tells clips from generated transitions.
type Kind int

const (
	Clip Kind = iota
	Transition
)

func (k Kind) String() string {
	switch k {
	case Clip:
		return "clip"
	case Transition:
		return "transition"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText lets the manifest store the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "clip":
		*k = Clip
	case "transition":
		*k = Transition
	default:
		return fmt.Errorf("unknown segment kind %q", b)
	}
	return nil
}

// Segment is a contiguous frame sequence with fixed frame rate and dimensions.
type Segment struct {
	Kind     Kind    `yaml:"kind"`
	Ordinal  int     `yaml:"ordinal"`
	Path     string  `yaml:"path"`
	Frames   int     `yaml:"frames"`
	FPS      float64 `yaml:"fps"`
	Duration float64 `yaml:"duration"`
	HasAudio bool    `yaml:"has_audio"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	// Group is the 1-based event group a clip came from; for a transition it
	// is the group on the left of the boundary.
	Group int `yaml:"group"`
}

func (s Segment) String() string {
	return fmt.Sprintf("%s#%d(%d frames @ %.3f fps)", s.Kind, s.Ordinal, s.Frames, s.FPS)
}

// Arena stores segments by ordinal so later stages can look them up without
// holding on to each other's slices.
type Arena struct {
	mu   sync.RWMutex
	segs map[int]Segment
}

func NewArena() *Arena {
	return &Arena{segs: make(map[int]Segment)}
}

// Put stores seg under its ordinal, replacing any previous entry.
func (a *Arena) Put(seg Segment) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.segs[seg.Ordinal] = seg
}

func (a *Arena) Get(ordinal int) (Segment, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.segs[ordinal]
	return s, ok
}

func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.segs)
}

// All returns the segments in ordinal order.
func (a *Arena) All() []Segment {
	a.mu.RLock()
	out := make([]Segment, 0, len(a.segs))
	for _, s := range a.segs {
		out = append(out, s)
	}
	a.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// FromSequence renumbers segs 1..n in slice order and stores them.
func FromSequence(segs []Segment) *Arena {
	a := NewArena()
	for i, s := range segs {
		s.Ordinal = i + 1
		a.Put(s)
	}
	return a
}

// TotalDuration sums segment durations.
func TotalDuration(segs []Segment) float64 {
	var d float64
	for _, s := range segs {
		d += s.Duration
	}
	return d
}
