// Package assemble joins the segments and their mixed tracks into the montage.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ivlev/killreel/internal/audio"
	"github.com/ivlev/killreel/internal/segment"
	"github.com/ivlev/killreel/internal/video"
)

// Canvas is the output frame size and rate. Zero fields are taken from the
// first segment.
type Canvas struct {
	Width  int
	Height int
	FPS    float64
}

// Result describes the written montage.
type Result struct {
	Output   string
	Segments int
	Duration float64
	Canvas   Canvas
}

// Assembler muxes each segment with its own track and concatenates them.
type Assembler struct {
	codec  video.Codec
	canvas Canvas
	dir    string
	logger *zap.Logger
}

func NewAssembler(codec video.Codec, canvas Canvas, dir string, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{codec: codec, canvas: canvas, dir: dir, logger: logger}
}

// Assemble writes the montage to output. tracks must hold one track per
// segment in the arena, matched by ordinal.
func (a *Assembler) Assemble(ctx context.Context, arena *segment.Arena, tracks []audio.MixedTrack, output string) (Result, error) {
	segs := arena.All()
	if len(segs) == 0 {
		return Result{}, errors.New("assemble: no segments")
	}
	if len(segs) != len(tracks) {
		return Result{}, fmt.Errorf("assemble: %d segments but %d audio tracks", len(segs), len(tracks))
	}
	byOrdinal := make(map[int]audio.MixedTrack, len(tracks))
	for _, t := range tracks {
		byOrdinal[t.Ordinal] = t
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return Result{}, fmt.Errorf("assemble dir: %w", err)
	}

	canvas := a.resolveCanvas(segs)
	inputs := make([]string, 0, len(segs))
	var total float64
	for _, seg := range segs {
		track, ok := byOrdinal[seg.Ordinal]
		if !ok {
			return Result{}, fmt.Errorf("assemble: no audio track for segment %d", seg.Ordinal)
		}
		muxed := filepath.Join(a.dir, fmt.Sprintf("segment_%03d.mp4", seg.Ordinal))
		if err := a.codec.Mux(ctx, seg.Path, track.Path, muxed); err != nil {
			return Result{}, fmt.Errorf("mux segment %d: %w", seg.Ordinal, err)
		}
		if seg.Width != canvas.Width || seg.Height != canvas.Height || !sameRate(seg.FPS, canvas.FPS) {
			a.logger.Debug("segment will be composed onto canvas",
				zap.Int("segment", seg.Ordinal),
				zap.Int("width", seg.Width),
				zap.Int("height", seg.Height),
				zap.Float64("fps", seg.FPS))
		}
		inputs = append(inputs, muxed)
		total += seg.Duration
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Result{}, fmt.Errorf("output dir: %w", err)
		}
	}
	err := a.codec.Concatenate(ctx, video.ConcatRequest{
		Inputs: inputs,
		Output: output,
		Width:  canvas.Width,
		Height: canvas.Height,
		FPS:    canvas.FPS,
	})
	if err != nil {
		return Result{}, fmt.Errorf("concatenate: %w", err)
	}

	a.logger.Info("montage written",
		zap.String("output", output),
		zap.Int("segments", len(segs)),
		zap.Float64("duration", total))
	return Result{Output: output, Segments: len(segs), Duration: total, Canvas: canvas}, nil
}

func (a *Assembler) resolveCanvas(segs []segment.Segment) Canvas {
	c := a.canvas
	first := segs[0]
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = first.Width, first.Height
	}
	if c.FPS <= 0 {
		c.FPS = first.FPS
	}
	// libx264 with yuv420p needs even dimensions.
	c.Width -= c.Width % 2
	c.Height -= c.Height % 2
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = 1920, 1080
	}
	return c
}

func sameRate(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}
