// Package manifest records what a run produced so later runs can reuse it.
package manifest

import (
	"time"

	"github.com/ivlev/killreel/internal/audio"
	"github.com/ivlev/killreel/internal/clips"
	"github.com/ivlev/killreel/internal/events"
	"github.com/ivlev/killreel/internal/segment"
)

const (
	Version  = "1"
	FileName = "manifest.yaml"
)

// Manifest describes one montage run.
type Manifest struct {
	Version   string    `yaml:"version"`
	RunID     string    `yaml:"run_id"`
	CreatedAt time.Time `yaml:"created_at"`
	Source    string    `yaml:"source"`
	Music     string    `yaml:"music,omitempty"`
	Output    string    `yaml:"output,omitempty"`

	MaxGap           float64 `yaml:"max_gap"`
	Buffer           float64 `yaml:"buffer"`
	TransitionFrames int     `yaml:"transition_frames"`

	Groups   []events.Group     `yaml:"groups"`
	Clips    []Clip             `yaml:"clips"`
	Segments []segment.Segment  `yaml:"segments,omitempty"`
	Tracks   []audio.MixedTrack `yaml:"tracks,omitempty"`
}

// Clip is one extracted clip and the source range it was cut from.
type Clip struct {
	Group  int              `yaml:"group"`
	Path   string           `yaml:"path"`
	Time   clips.TimeRange  `yaml:"time"`
	Frames clips.FrameRange `yaml:"frames"`
}

// ClipRanges maps group ordinals to the frame ranges recorded for them.
func (m *Manifest) ClipRanges() map[int]clips.FrameRange {
	if m == nil {
		return nil
	}
	out := make(map[int]clips.FrameRange, len(m.Clips))
	for _, c := range m.Clips {
		out[c.Group] = c.Frames
	}
	return out
}

// AddClip records the job that produced a clip.
func (m *Manifest) AddClip(job clips.Job) {
	m.Clips = append(m.Clips, Clip{
		Group:  job.Group.Ordinal,
		Path:   job.Path,
		Time:   job.Time,
		Frames: job.Frames,
	})
}
