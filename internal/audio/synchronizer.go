package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ivlev/killreel/internal/segment"
	"github.com/ivlev/killreel/internal/source"
	"github.com/ivlev/killreel/internal/video"
)

// MixedTrack is the rendered audio for exactly one segment.
type MixedTrack struct {
	Ordinal int    `yaml:"ordinal"`
	Path    string `yaml:"path"`
	Slice   Slice  `yaml:"music"`
	// CursorAt is the unwrapped music time at which the segment starts.
	CursorAt float64 `yaml:"cursor_at"`
	OwnAudio bool    `yaml:"own_audio"`
}

// Synchronizer renders mixed tracks in segment order.
type Synchronizer struct {
	codec  video.Codec
	music  *source.Music
	policy Policy
	dir    string
	logger *zap.Logger
}

func NewSynchronizer(codec video.Codec, music *source.Music, policy Policy, dir string, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{codec: codec, music: music, policy: policy, dir: dir, logger: logger}
}

// Mix renders the track for seg with the music starting at cur and returns
// the cursor advanced past the segment.
func (s *Synchronizer) Mix(ctx context.Context, seg segment.Segment, cur Cursor) (MixedTrack, Cursor, error) {
	if seg.Duration <= 0 {
		return MixedTrack{}, cur, fmt.Errorf("mix segment %d: zero duration", seg.Ordinal)
	}
	slice := PlanSlice(cur, seg.Duration, s.music.Duration)
	if slice.Wraps() {
		s.logger.Debug("music wraps",
			zap.Int("segment", seg.Ordinal),
			zap.Float64("loop_start", slice.LoopStart),
			zap.Int("copies", slice.Copies))
	}

	own, musicGain, ownUsed := s.policy.Envelopes(seg)
	req := video.MixRequest{
		Output:      filepath.Join(s.dir, fmt.Sprintf("audio_%03d.m4a", seg.Ordinal)),
		Own:         own,
		Music:       s.music.Path,
		MusicOffset: slice.LoopStart,
		MusicCopies: slice.Copies,
		MusicGain:   musicGain,
		Duration:    seg.Duration,
	}
	if ownUsed {
		req.Segment = seg.Path
	}
	if err := s.codec.MixAudio(ctx, req); err != nil {
		return MixedTrack{}, cur, fmt.Errorf("mix segment %d: %w", seg.Ordinal, err)
	}

	track := MixedTrack{
		Ordinal:  seg.Ordinal,
		Path:     req.Output,
		Slice:    slice,
		CursorAt: cur.Seconds(),
		OwnAudio: ownUsed,
	}
	return track, cur.Advance(seg.Duration), nil
}

// Fold mixes segs in order starting from an empty cursor.
func (s *Synchronizer) Fold(ctx context.Context, segs []segment.Segment) ([]MixedTrack, error) {
	if len(segs) == 0 {
		return nil, errors.New("mix: no segments")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("audio dir: %w", err)
	}

	tracks := make([]MixedTrack, 0, len(segs))
	var cur Cursor
	for _, seg := range segs {
		track, next, err := s.Mix(ctx, seg, cur)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
		cur = next
	}
	s.logger.Info("audio synchronized",
		zap.Int("tracks", len(tracks)),
		zap.Float64("music_consumed", cur.Seconds()))
	return tracks, nil
}
