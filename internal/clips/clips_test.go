package clips

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ivlev/killreel/internal/events"
	"github.com/ivlev/killreel/internal/source"
	"github.com/ivlev/killreel/internal/video"
	"github.com/ivlev/killreel/internal/video/videotest"
)

func openSource(t *testing.T, info video.Info) (*videotest.Codec, *source.MediaSource) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "match.mp4")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	codec := videotest.New(map[string]video.Info{path: info})
	src, err := source.Open(context.Background(), codec, path)
	if err != nil {
		t.Fatalf("source.Open failed: %v", err)
	}
	return codec, src
}

func TestFramesScenario(t *testing.T) {
	g := events.Group{Ordinal: 1, Timestamps: []float64{1.0, 1.2, 1.4}}
	tr := RangeFor(g, 0.5, 10)
	if tr.Start != 0.5 || tr.End != 1.4 {
		t.Fatalf("Expected 0.5..1.4, got %v", tr)
	}
	fr := Frames(tr, 30, 300)
	if fr.Start != 15 || fr.End != 42 {
		t.Errorf("Expected frames 15..42, got %v", fr)
	}
	if fr.Count() != 27 {
		t.Errorf("Expected 27 frames, got %d", fr.Count())
	}
}

func TestFramesEdges(t *testing.T) {
	tests := []struct {
		name  string
		tr    TimeRange
		total int
		want  FrameRange
	}{
		{"clamped to start", TimeRange{0, 0.2}, 300, FrameRange{0, 6}},
		{"clamped to end", TimeRange{9.5, 12}, 300, FrameRange{285, 299}},
		{"degenerate", TimeRange{2, 2}, 300, FrameRange{60, 60}},
		{"past end", TimeRange{11, 12}, 300, FrameRange{299, 299}},
		{"empty source", TimeRange{0, 1}, 0, FrameRange{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Frames(tt.tr, 30, tt.total)
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if got.Count() < 1 {
				t.Errorf("Count must be at least one, got %d", got.Count())
			}
		})
	}
}

func TestRangeForClampsToDuration(t *testing.T) {
	tr := RangeFor(events.Group{Timestamps: []float64{0.2, 12}}, 0.5, 10)
	if tr.Start != 0 || tr.End != 10 {
		t.Errorf("Expected 0..10, got %v", tr)
	}
}

func TestExtractAll(t *testing.T) {
	codec, src := openSource(t, video.Info{FPS: 30, Frames: 300, Width: 1280, Height: 720, HasAudio: true})
	dir := filepath.Join(t.TempDir(), "kill_clips")
	ex := NewExtractor(codec, src, Options{Buffer: 0.5, Dir: dir, Prefix: "kill", Workers: 3}, zap.NewNop())

	groups := events.GroupByGap([]float64{5.0, 1.0, 1.2, 1.4, 8.0}, 0.5)
	clips, err := ex.ExtractAll(context.Background(), groups)
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(clips) != 3 {
		t.Fatalf("Expected 3 clips, got %d", len(clips))
	}
	for i, c := range clips {
		if c.Ordinal != i+1 {
			t.Errorf("Clip %d has ordinal %d", i, c.Ordinal)
		}
		want := filepath.Join(dir, "kill"+string(rune('1'+i))+".mp4")
		if c.Path != want {
			t.Errorf("Expected path %s, got %s", want, c.Path)
		}
		if _, err := os.Stat(c.Path); err != nil {
			t.Errorf("Clip file missing: %v", err)
		}
		if !c.HasAudio {
			t.Errorf("Clip %d lost the source audio", i)
		}
	}
	if clips[0].Frames != 27 {
		t.Errorf("Expected first clip of 27 frames, got %d", clips[0].Frames)
	}
	if len(codec.Cuts) != 3 {
		t.Errorf("Expected 3 cuts, got %d", len(codec.Cuts))
	}
}

func TestExtractShortRead(t *testing.T) {
	codec, src := openSource(t, video.Info{FPS: 30, Frames: 300})
	codec.Truncate = 10
	ex := NewExtractor(codec, src, Options{Buffer: 0.5, Dir: t.TempDir()}, zap.NewNop())

	seg, err := ex.Extract(context.Background(), events.Group{Ordinal: 1, Timestamps: []float64{1.0, 1.4}})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if seg.Frames != 10 {
		t.Errorf("Expected truncated clip of 10 frames, got %d", seg.Frames)
	}
	if seg.HasAudio {
		t.Error("Silent source must give silent clips")
	}
}

func TestExtractReuse(t *testing.T) {
	codec, src := openSource(t, video.Info{FPS: 30, Frames: 300})
	dir := t.TempDir()
	ex := NewExtractor(codec, src, Options{Buffer: 0.5, Dir: dir}, zap.NewNop())
	g := events.Group{Ordinal: 1, Timestamps: []float64{1.0, 1.4}}

	if _, err := ex.Extract(context.Background(), g); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	ex.Reuse(map[int]FrameRange{1: ex.Plan(g).Frames})
	if _, err := ex.Extract(context.Background(), g); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(codec.Cuts) != 1 {
		t.Errorf("Expected the second run to reuse the clip, got %d cuts", len(codec.Cuts))
	}

	ex.Reuse(map[int]FrameRange{1: {Start: 0, End: 5}})
	if _, err := ex.Extract(context.Background(), g); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(codec.Cuts) != 2 {
		t.Errorf("Expected a recut for a changed range, got %d cuts", len(codec.Cuts))
	}
}

func TestResetDir(t *testing.T) {
	codec, src := openSource(t, video.Info{FPS: 30, Frames: 300})
	dir := filepath.Join(t.TempDir(), "clips")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dir, "kill9.mp4")
	os.WriteFile(stale, []byte("old"), 0644)
	manifest := filepath.Join(dir, "manifest.yaml")
	os.WriteFile(manifest, []byte("version: \"1\"\n"), 0644)

	keep := []string{
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "killer_cam.mp4"),
		filepath.Join(dir, "kill01.mp4"),
		filepath.Join(dir, "footage", "raw.mkv"),
	}
	os.MkdirAll(filepath.Join(dir, "footage"), 0755)
	for _, p := range keep {
		os.WriteFile(p, []byte("user data"), 0644)
	}

	ex := NewExtractor(codec, src, Options{Dir: dir}, zap.NewNop())
	if err := ex.ResetDir("manifest.yaml"); err != nil {
		t.Fatalf("ResetDir failed: %v", err)
	}
	for _, p := range []string{stale, manifest} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", filepath.Base(p))
		}
	}
	for _, p := range keep {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Unrelated file %s was touched: %v", p, err)
		}
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected dir to exist: %v", err)
	}
}
