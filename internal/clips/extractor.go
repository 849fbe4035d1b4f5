// Package clips cuts one clip per event group out of the source video.
package clips

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/killreel/internal/events"
	"github.com/ivlev/killreel/internal/segment"
	"github.com/ivlev/killreel/internal/source"
	"github.com/ivlev/killreel/internal/video"
)

// Options configures an Extractor.
type Options struct {
	Buffer  float64
	Dir     string
	Prefix  string
	Workers int
}

// Job is the planned cut for one group.
type Job struct {
	Group  events.Group
	Time   TimeRange
	Frames FrameRange
	Path   string
}

// Extractor turns event groups into clip segments.
type Extractor struct {
	codec  video.Codec
	src    source.Source
	opts   Options
	reuse  map[int]FrameRange
	logger *zap.Logger
}

func NewExtractor(codec video.Codec, src source.Source, opts Options, logger *zap.Logger) *Extractor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Prefix == "" {
		opts.Prefix = "kill"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{codec: codec, src: src, opts: opts, logger: logger}
}

// Reuse registers clips cut by an earlier run. A clip is reused when its
// ordinal maps to the same frame range and the file is still on disk.
func (e *Extractor) Reuse(prev map[int]FrameRange) {
	e.reuse = prev
}

// Path is where the clip for the given 1-based ordinal is written.
func (e *Extractor) Path(ordinal int) string {
	return filepath.Join(e.opts.Dir, e.opts.Prefix+strconv.Itoa(ordinal)+".mp4")
}

// Plan computes the cut for a group without touching any media.
func (e *Extractor) Plan(g events.Group) Job {
	tr := RangeFor(g, e.opts.Buffer, e.src.Duration())
	return Job{
		Group:  g,
		Time:   tr,
		Frames: Frames(tr, e.src.FPS(), e.src.FrameCount()),
		Path:   e.Path(g.Ordinal),
	}
}

// ResetDir removes the clips this extractor writes (<prefix><n>.mp4) and the
// extra file names given. Anything else in the directory is left alone.
func (e *Extractor) ResetDir(extra ...string) error {
	if err := os.MkdirAll(e.opts.Dir, 0755); err != nil {
		return fmt.Errorf("reset clips dir: %w", err)
	}
	entries, err := os.ReadDir(e.opts.Dir)
	if err != nil {
		return fmt.Errorf("reset clips dir: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(e.ownsClip(name) || slices.Contains(extra, name)) {
			continue
		}
		if err := os.Remove(filepath.Join(e.opts.Dir, name)); err != nil {
			return fmt.Errorf("reset clips dir: %w", err)
		}
	}
	return nil
}

// ownsClip reports whether name is <prefix><ordinal>.mp4.
func (e *Extractor) ownsClip(name string) bool {
	rest, ok := strings.CutPrefix(name, e.opts.Prefix)
	if !ok {
		return false
	}
	num, ok := strings.CutSuffix(rest, ".mp4")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(num)
	return err == nil && n > 0 && strconv.Itoa(n) == num
}

// Extract cuts the clip for one group.
func (e *Extractor) Extract(ctx context.Context, g events.Group) (segment.Segment, error) {
	if len(g.Timestamps) == 0 {
		return segment.Segment{}, fmt.Errorf("clip %d: empty group", g.Ordinal)
	}
	job := e.Plan(g)

	if e.reusable(job) {
		e.logger.Debug("reusing clip", zap.Int("group", g.Ordinal), zap.String("path", job.Path))
	} else {
		if job.Frames.End == job.Frames.Start {
			e.logger.Debug("degenerate clip range", zap.Int("group", g.Ordinal), zap.Stringer("frames", job.Frames))
		}
		if err := os.MkdirAll(e.opts.Dir, 0755); err != nil {
			return segment.Segment{}, fmt.Errorf("clips dir: %w", err)
		}
		err := e.codec.CutFrames(ctx, video.CutRequest{
			Input:      e.src.Path(),
			Output:     job.Path,
			StartFrame: job.Frames.Start,
			Frames:     job.Frames.Count(),
			FPS:        e.src.FPS(),
			KeepAudio:  e.src.HasAudio(),
		})
		if err != nil {
			return segment.Segment{}, fmt.Errorf("clip %d: %w", g.Ordinal, err)
		}
	}

	info, err := e.codec.Probe(ctx, job.Path)
	if err != nil {
		return segment.Segment{}, fmt.Errorf("clip %d: %w", g.Ordinal, err)
	}
	if info.Frames <= 0 {
		return segment.Segment{}, fmt.Errorf("clip %d: %w", g.Ordinal, source.ErrNoFrames)
	}
	if info.Frames < job.Frames.Count() {
		e.logger.Warn("clip shorter than requested",
			zap.Int("group", g.Ordinal),
			zap.Int("requested", job.Frames.Count()),
			zap.Int("got", info.Frames))
	}

	fps := e.src.FPS()
	width, height := e.src.Dimensions()
	if info.Width > 0 && info.Height > 0 {
		width, height = info.Width, info.Height
	}
	return segment.Segment{
		Kind:     segment.Clip,
		Ordinal:  g.Ordinal,
		Path:     job.Path,
		Frames:   info.Frames,
		FPS:      fps,
		Duration: float64(info.Frames) / fps,
		HasAudio: info.HasAudio,
		Width:    width,
		Height:   height,
		Group:    g.Ordinal,
	}, nil
}

func (e *Extractor) reusable(job Job) bool {
	if e.reuse == nil {
		return false
	}
	prev, ok := e.reuse[job.Group.Ordinal]
	if !ok || prev != job.Frames {
		return false
	}
	_, err := os.Stat(job.Path)
	return err == nil
}

// ExtractAll cuts every group in parallel and returns the clips in group order.
func (e *Extractor) ExtractAll(ctx context.Context, groups []events.Group) ([]segment.Segment, error) {
	if len(groups) == 0 {
		return nil, errors.New("no groups to extract")
	}
	out := make([]segment.Segment, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, grp := range groups {
		i, grp := i, grp
		g.Go(func() error {
			seg, err := e.Extract(gctx, grp)
			if err != nil {
				return err
			}
			out[i] = seg
			e.logger.Info("clip extracted",
				zap.Int("group", grp.Ordinal),
				zap.Int("frames", seg.Frames),
				zap.String("path", seg.Path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
