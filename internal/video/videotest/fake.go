// Package videotest provides an in-memory stand-in for the ffmpeg codec.
package videotest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ivlev/killreel/internal/video"
)

// Codec records every call and writes small placeholder files so callers can
// check what landed on disk. Probe answers from Media, falling back to the
// info remembered for files the fake itself produced.
type Codec struct {
	mu sync.Mutex

	Media map[string]video.Info

	// FailXfade makes Xfade fail for outputs whose path is listed.
	FailXfade map[string]bool
	// Truncate caps the frames CutFrames actually produces.
	Truncate int

	Cuts    []video.CutRequest
	Xfades  []video.XfadeRequest
	Mixes   []video.MixRequest
	Muxes   [][3]string
	Concats []video.ConcatRequest

	produced map[string]video.Info
}

// New returns a fake codec that knows about the given media.
func New(media map[string]video.Info) *Codec {
	if media == nil {
		media = map[string]video.Info{}
	}
	return &Codec{Media: media, FailXfade: map[string]bool{}, produced: map[string]video.Info{}}
}

func (c *Codec) Probe(_ context.Context, path string) (video.Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if info, ok := c.Media[path]; ok {
		return info, nil
	}
	if info, ok := c.produced[path]; ok {
		return info, nil
	}
	return video.Info{}, fmt.Errorf("videotest: unknown media %s", path)
}

func (c *Codec) CutFrames(_ context.Context, req video.CutRequest) error {
	c.mu.Lock()
	src, ok := c.Media[req.Input]
	if !ok {
		src, ok = c.produced[req.Input]
	}
	c.Cuts = append(c.Cuts, req)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("videotest: unknown input %s", req.Input)
	}

	frames := req.Frames
	if c.Truncate > 0 && frames > c.Truncate {
		frames = c.Truncate
	}
	return c.produce(req.Output, video.Info{
		FPS:      req.FPS,
		Frames:   frames,
		Duration: float64(frames) / req.FPS,
		Width:    src.Width,
		Height:   src.Height,
		HasAudio: req.KeepAudio && src.HasAudio,
	})
}

func (c *Codec) Xfade(_ context.Context, req video.XfadeRequest) error {
	c.mu.Lock()
	c.Xfades = append(c.Xfades, req)
	fail := c.FailXfade[req.Output]
	c.mu.Unlock()
	if fail {
		return fmt.Errorf("videotest: xfade failed for %s", req.Output)
	}
	frames := int(req.Duration*req.FPS + 0.5)
	return c.produce(req.Output, video.Info{
		FPS:      req.FPS,
		Frames:   frames,
		Duration: req.Duration,
		Width:    req.Width,
		Height:   req.Height,
	})
}

func (c *Codec) MixAudio(_ context.Context, req video.MixRequest) error {
	c.mu.Lock()
	c.Mixes = append(c.Mixes, req)
	c.mu.Unlock()
	return c.produce(req.Output, video.Info{Duration: req.Duration, HasAudio: true})
}

func (c *Codec) Mux(_ context.Context, videoPath, audioPath, output string) error {
	c.mu.Lock()
	c.Muxes = append(c.Muxes, [3]string{videoPath, audioPath, output})
	info := c.produced[videoPath]
	c.mu.Unlock()
	info.HasAudio = true
	return c.produce(output, info)
}

func (c *Codec) Concatenate(_ context.Context, req video.ConcatRequest) error {
	c.mu.Lock()
	c.Concats = append(c.Concats, req)
	var total float64
	for _, in := range req.Inputs {
		total += c.produced[in].Duration
	}
	c.mu.Unlock()
	return c.produce(req.Output, video.Info{
		FPS: req.FPS, Duration: total, Width: req.Width, Height: req.Height, HasAudio: true,
	})
}

func (c *Codec) produce(path string, info video.Info) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte("fake media"), 0644); err != nil {
		return err
	}
	c.mu.Lock()
	c.produced[path] = info
	c.mu.Unlock()
	return nil
}
