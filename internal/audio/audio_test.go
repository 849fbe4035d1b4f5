package audio

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ivlev/killreel/internal/segment"
	"github.com/ivlev/killreel/internal/source"
	"github.com/ivlev/killreel/internal/video/videotest"
)

func TestPlanSliceWraps(t *testing.T) {
	cur := Cursor{}.Advance(6)
	s := PlanSlice(cur, 6, 10)
	if s.LoopStart != 6 {
		t.Errorf("Expected loop start 6, got %f", s.LoopStart)
	}
	if s.Copies != 2 {
		t.Errorf("Expected 2 copies, got %d", s.Copies)
	}
	if !s.Wraps() {
		t.Error("Expected slice to wrap")
	}
}

func TestPlanSlice(t *testing.T) {
	tests := []struct {
		name      string
		cursor    float64
		dur       float64
		music     float64
		wantStart float64
		wantCopy  int
	}{
		{"fits", 0, 6, 10, 0, 1},
		{"exact end", 4, 6, 10, 4, 1},
		{"cursor past track", 23, 2, 10, 3, 1},
		{"longer than track", 0, 25, 10, 0, 3},
		{"zero length", 5, 0, 10, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := PlanSlice(Cursor{}.Advance(tt.cursor), tt.dur, tt.music)
			if math.Abs(s.LoopStart-tt.wantStart) > 1e-9 {
				t.Errorf("Expected loop start %f, got %f", tt.wantStart, s.LoopStart)
			}
			if s.Copies != tt.wantCopy {
				t.Errorf("Expected %d copies, got %d", tt.wantCopy, s.Copies)
			}
			if end := s.LoopStart + tt.dur; end > float64(s.Copies)*tt.music+1e-9 {
				t.Errorf("Slice end %f not covered by %d copies", end, s.Copies)
			}
		})
	}
}

func TestCursorNeverRewinds(t *testing.T) {
	c := Cursor{}.Advance(3).Advance(-1)
	if c.Seconds() != 3 {
		t.Errorf("Expected 3, got %f", c.Seconds())
	}
}

func TestEnvelopes(t *testing.T) {
	p := DefaultPolicy()

	_, music, used := p.Envelopes(segment.Segment{Duration: 2})
	if used || music.Tail != 0.8 || music.Split != 0 {
		t.Errorf("Music-only segment: used=%v music=%+v", used, music)
	}

	own, music, used := p.Envelopes(segment.Segment{Duration: 0.3, HasAudio: true})
	if !used || own.Tail != 2.5 || music.Tail != 0.8 {
		t.Errorf("Short segment: own=%+v music=%+v", own, music)
	}

	own, music, _ = p.Envelopes(segment.Segment{Duration: 2, HasAudio: true})
	if own.Split != 0.5 || own.Head != 4 || own.Tail != 0 {
		t.Errorf("Unexpected own envelope %+v", own)
	}
	if music.Head != 0.1 || music.Tail != 0.7 {
		t.Errorf("Unexpected music envelope %+v", music)
	}

	p.AltIntro = true
	_, music, _ = p.Envelopes(segment.Segment{Duration: 2, HasAudio: true})
	if music.Head != 0.5 {
		t.Errorf("Expected alternate intro music gain 0.5, got %f", music.Head)
	}
}

func TestFold(t *testing.T) {
	codec := videotest.New(nil)
	music := &source.Music{Path: "music.mp3", Duration: 10}
	dir := filepath.Join(t.TempDir(), "audio")
	sync := NewSynchronizer(codec, music, DefaultPolicy(), dir, zap.NewNop())

	segs := []segment.Segment{
		{Kind: segment.Clip, Ordinal: 1, Path: "c1.mp4", Duration: 6, HasAudio: true},
		{Kind: segment.Transition, Ordinal: 2, Path: "t1.mp4", Duration: 0.25},
		{Kind: segment.Clip, Ordinal: 3, Path: "c2.mp4", Duration: 6, HasAudio: true},
	}
	tracks, err := sync.Fold(context.Background(), segs)
	if err != nil {
		t.Fatalf("Fold failed: %v", err)
	}
	if len(tracks) != len(segs) {
		t.Fatalf("Expected %d tracks, got %d", len(segs), len(tracks))
	}

	prev := -1.0
	for i, tr := range tracks {
		if tr.Ordinal != segs[i].Ordinal {
			t.Errorf("Track %d bound to segment %d", i, tr.Ordinal)
		}
		if tr.CursorAt <= prev {
			t.Errorf("Cursor did not advance at track %d: %f <= %f", i, tr.CursorAt, prev)
		}
		prev = tr.CursorAt
	}
	if tracks[2].CursorAt != 6.25 || tracks[2].Slice.Copies != 2 {
		t.Errorf("Unexpected third slice %+v at %f", tracks[2].Slice, tracks[2].CursorAt)
	}

	if codec.Mixes[1].Segment != "" {
		t.Error("Transition must be mixed from music only")
	}
	if codec.Mixes[0].Segment != "c1.mp4" || codec.Mixes[0].MusicOffset != 0 {
		t.Errorf("Unexpected first mix %+v", codec.Mixes[0])
	}

	again, err := NewSynchronizer(videotest.New(nil), music, DefaultPolicy(), dir, zap.NewNop()).Fold(context.Background(), segs)
	if err != nil {
		t.Fatalf("Fold failed: %v", err)
	}
	for i := range again {
		if again[i] != tracks[i] {
			t.Errorf("Fold not deterministic at %d: %+v vs %+v", i, again[i], tracks[i])
		}
	}
}
