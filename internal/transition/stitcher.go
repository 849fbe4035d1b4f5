// Package transition bridges adjacent clips with generated transition segments.
package transition

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/killreel/internal/effects"
	"github.com/ivlev/killreel/internal/segment"
	"github.com/ivlev/killreel/internal/video"
)

// Options configures a Stitcher.
type Options struct {
	Frames  int // per-boundary frame budget
	Palette []effects.Style
	WorkDir string
	Workers int
}

// Stitcher trims clips at their boundaries and inserts generated transitions.
type Stitcher struct {
	codec  video.Codec
	gen    Generator
	opts   Options
	logger *zap.Logger
}

func NewStitcher(codec video.Codec, gen Generator, opts Options, logger *zap.Logger) *Stitcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if len(opts.Palette) == 0 {
		opts.Palette = effects.Palette
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stitcher{codec: codec, gen: gen, opts: opts, logger: logger}
}

// Stitch returns [body0, t0?, body1, t1?, ..., bodyN]. A boundary whose
// transition cannot be produced is a straight cut; its trims still apply.
func (s *Stitcher) Stitch(ctx context.Context, clips []segment.Segment) ([]segment.Segment, error) {
	if len(clips) == 0 {
		return nil, errors.New("stitch: no clips")
	}
	if err := os.MkdirAll(s.opts.WorkDir, 0755); err != nil {
		return nil, fmt.Errorf("stitch work dir: %w", err)
	}

	frames := s.opts.Frames
	if s.gen == nil {
		frames = 0
	}
	layout := Plan(clips, frames)

	bodies := make([]segment.Segment, len(clips))
	bridges := make([]*segment.Segment, len(layout.Budgets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, clip := range clips {
		i, clip := i, clip
		g.Go(func() error {
			body, err := s.body(gctx, i, clip, layout.Trims[i])
			if err != nil {
				return err
			}
			bodies[i] = body
			return nil
		})
	}
	for i, budget := range layout.Budgets {
		i, budget := i, budget
		if budget == 0 {
			s.logger.Debug("no transition budget, straight cut", zap.Int("boundary", i))
			continue
		}
		g.Go(func() error {
			seg, err := s.bridge(gctx, i, clips[i], clips[i+1], budget)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("transition failed, using straight cut",
					zap.Int("boundary", i),
					zap.String("style", string(effects.At(s.opts.Palette, i))),
					zap.Error(err))
				return nil
			}
			bridges[i] = &seg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]segment.Segment, 0, len(clips)+len(bridges))
	for i, body := range bodies {
		out = append(out, body)
		if i < len(bridges) && bridges[i] != nil {
			out = append(out, *bridges[i])
		}
	}
	return out, nil
}

// body cuts the frames of clip that no boundary consumes.
func (s *Stitcher) body(ctx context.Context, i int, clip segment.Segment, trim Trim) (segment.Segment, error) {
	if trim.Head == 0 && trim.Tail == 0 {
		return clip, nil
	}
	out := filepath.Join(s.opts.WorkDir, fmt.Sprintf("body_%03d.mp4", i))
	piece, err := s.cut(ctx, clip, trim.Head, trim.Body(clip.Frames), out, clip.HasAudio)
	if err != nil {
		return segment.Segment{}, fmt.Errorf("trim clip %d: %w", clip.Ordinal, err)
	}
	return piece, nil
}

// bridge cuts the boundary pieces and asks the generator to blend them.
func (s *Stitcher) bridge(ctx context.Context, i int, left, right segment.Segment, budget int) (segment.Segment, error) {
	prefix := filepath.Join(s.opts.WorkDir, fmt.Sprintf("transition_%03d", i))
	tail, err := s.cut(ctx, left, left.Frames-budget, budget, prefix+"_left.mp4", false)
	if err != nil {
		return segment.Segment{}, fmt.Errorf("%w: left piece: %v", ErrServiceFailed, err)
	}
	head, err := s.cut(ctx, right, 0, budget, prefix+"_right.mp4", false)
	if err != nil {
		return segment.Segment{}, fmt.Errorf("%w: right piece: %v", ErrServiceFailed, err)
	}

	seg, err := s.gen.Generate(ctx, Request{
		Left:   tail,
		Right:  head,
		Style:  effects.At(s.opts.Palette, i),
		Frames: budget,
		Prefix: prefix,
	})
	if err != nil {
		return segment.Segment{}, err
	}
	seg.Kind = segment.Transition
	seg.HasAudio = false
	seg.Group = left.Group
	return seg, nil
}

func (s *Stitcher) cut(ctx context.Context, clip segment.Segment, start, frames int, out string, keepAudio bool) (segment.Segment, error) {
	err := s.codec.CutFrames(ctx, video.CutRequest{
		Input:      clip.Path,
		Output:     out,
		StartFrame: start,
		Frames:     frames,
		FPS:        clip.FPS,
		KeepAudio:  keepAudio,
	})
	if err != nil {
		return segment.Segment{}, err
	}
	info, err := s.codec.Probe(ctx, out)
	if err != nil {
		return segment.Segment{}, err
	}
	got := info.Frames
	if got <= 0 {
		got = frames
	}
	piece := clip
	piece.Path = out
	piece.Frames = got
	piece.Duration = float64(got) / clip.FPS
	piece.HasAudio = keepAudio && info.HasAudio
	return piece, nil
}
