package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ivlev/killreel/internal/video"
)

var (
	// ErrInvalidFPS is returned for sources that report a non-positive frame rate.
	ErrInvalidFPS = errors.New("invalid frame rate")
	// ErrNoFrames is returned for sources without decodable video frames.
	ErrNoFrames = errors.New("no video frames")
	// ErrNoAudio is returned for music tracks without audio.
	ErrNoAudio = errors.New("no audio stream")
)

// Prober reports stream metadata for a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (video.Info, error)
}

// Source is frame-indexed read access to the recorded gameplay video.
type Source interface {
	Path() string
	FPS() float64
	FrameCount() int
	Duration() float64
	HasAudio() bool
	Dimensions() (width, height int)
}

// MediaSource is a Source backed by a probed file on disk.
type MediaSource struct {
	path string
	info video.Info
}

// Open probes path and validates that it can be cut into clips.
func Open(ctx context.Context, p Prober, path string) (*MediaSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("source %s: %w", path, err)
	}
	info, err := p.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", path, err)
	}
	if info.FPS <= 0 {
		return nil, fmt.Errorf("source %s: %w (%v)", path, ErrInvalidFPS, info.FPS)
	}
	if info.Frames <= 0 {
		return nil, fmt.Errorf("source %s: %w", path, ErrNoFrames)
	}
	if info.Duration <= 0 {
		info.Duration = float64(info.Frames) / info.FPS
	}
	return &MediaSource{path: path, info: info}, nil
}

func (s *MediaSource) Path() string { return s.path }
func (s *MediaSource) FPS() float64 { return s.info.FPS }
func (s *MediaSource) FrameCount() int { return s.info.Frames }
func (s *MediaSource) Duration() float64 { return s.info.Duration }
func (s *MediaSource) HasAudio() bool { return s.info.HasAudio }
func (s *MediaSource) Dimensions() (int, int) {
	return s.info.Width, s.info.Height
}

// Music is the background track, sliced by time.
type Music struct {
	Path     string
	Duration float64
}

// OpenMusic probes the music track.
func OpenMusic(ctx context.Context, p Prober, path string) (*Music, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("music %s: %w", path, err)
	}
	info, err := p.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("music %s: %w", path, err)
	}
	if !info.HasAudio {
		return nil, fmt.Errorf("music %s: %w", path, ErrNoAudio)
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("music %s: zero duration", path)
	}
	return &Music{Path: path, Duration: info.Duration}, nil
}
