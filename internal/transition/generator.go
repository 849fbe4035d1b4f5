package transition

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ivlev/killreel/internal/effects"
	"github.com/ivlev/killreel/internal/segment"
	"github.com/ivlev/killreel/internal/source"
	"github.com/ivlev/killreel/internal/video"
)

// ErrServiceFailed marks a transition that could not be produced. The stitcher
// answers it with a straight cut.
var ErrServiceFailed = errors.New("transition service failed")

// MergedSuffix is appended to the request prefix to name the produced file.
const MergedSuffix = "_merged.mp4"

// Request describes one boundary to bridge.
type Request struct {
	Left   segment.Segment // tail frames of the left clip
	Right  segment.Segment // head frames of the right clip
	Style  effects.Style
	Frames int
	Prefix string
}

// Output is the path a generator writes the bridging segment to.
func (r Request) Output() string {
	return r.Prefix + MergedSuffix
}

// Generator produces a bridging segment for a boundary. Any returned error
// means the boundary becomes a straight cut.
type Generator interface {
	Generate(ctx context.Context, req Request) (segment.Segment, error)
}

// XfadeGenerator renders transitions in-process with the ffmpeg xfade filter.
type XfadeGenerator struct {
	Codec video.Codec
}

func (g *XfadeGenerator) Generate(ctx context.Context, req Request) (segment.Segment, error) {
	if req.Frames <= 0 || req.Left.FPS <= 0 {
		return segment.Segment{}, fmt.Errorf("%w: empty boundary", ErrServiceFailed)
	}
	out := req.Output()
	err := g.Codec.Xfade(ctx, video.XfadeRequest{
		Left:       req.Left.Path,
		Right:      req.Right.Path,
		Output:     out,
		Transition: effects.XfadeName(req.Style),
		Duration:   float64(req.Frames) / req.Left.FPS,
		FPS:        req.Left.FPS,
		Width:      req.Left.Width,
		Height:     req.Left.Height,
	})
	if err != nil {
		return segment.Segment{}, fmt.Errorf("%w: %v", ErrServiceFailed, err)
	}
	return probeMerged(ctx, g.Codec, req)
}

// ExecGenerator runs an external transition command:
//
//	<command...> --left L --right R --style S --frames N --output PREFIX
//
// and expects PREFIX_merged.mp4 on success.
type ExecGenerator struct {
	Command []string
	Prober  source.Prober
}

func (g *ExecGenerator) Generate(ctx context.Context, req Request) (segment.Segment, error) {
	if len(g.Command) == 0 {
		return segment.Segment{}, fmt.Errorf("%w: no command configured", ErrServiceFailed)
	}
	args := append(append([]string(nil), g.Command[1:]...),
		"--left", req.Left.Path,
		"--right", req.Right.Path,
		"--style", string(req.Style),
		"--frames", strconv.Itoa(req.Frames),
		"--output", req.Prefix,
	)
	cmd := exec.CommandContext(ctx, g.Command[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return segment.Segment{}, fmt.Errorf("%w: %v: %s", ErrServiceFailed, err, strings.TrimSpace(string(out)))
	}
	if _, err := os.Stat(req.Output()); err != nil {
		return segment.Segment{}, fmt.Errorf("%w: no output at %s", ErrServiceFailed, req.Output())
	}
	return probeMerged(ctx, g.Prober, req)
}

func probeMerged(ctx context.Context, p source.Prober, req Request) (segment.Segment, error) {
	info, err := p.Probe(ctx, req.Output())
	if err != nil {
		return segment.Segment{}, fmt.Errorf("%w: %v", ErrServiceFailed, err)
	}
	fps := req.Left.FPS
	if info.FPS > 0 {
		fps = info.FPS
	}
	frames := info.Frames
	if frames <= 0 {
		frames = req.Frames
	}
	width, height := info.Width, info.Height
	if width == 0 || height == 0 {
		width, height = req.Left.Width, req.Left.Height
	}
	return segment.Segment{
		Kind:     segment.Transition,
		Path:     req.Output(),
		Frames:   frames,
		FPS:      fps,
		Duration: float64(frames) / fps,
		Width:    width,
		Height:   height,
		Group:    req.Left.Group,
	}, nil
}
