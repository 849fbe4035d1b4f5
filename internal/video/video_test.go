package video

import (
	"math"
	"strings"
	"testing"
)

func TestParseProbe(t *testing.T) {
	payload := `{
  "streams": [
    {"codec_type": "video", "width": 1920, "height": 1080, "r_frame_rate": "60/1", "avg_frame_rate": "30000/1001", "nb_frames": "300"},
    {"codec_type": "audio"}
  ],
  "format": {"duration": "10.010000"}
}`
	info, err := parseProbe([]byte(payload))
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if math.Abs(info.FPS-29.97) > 0.01 {
		t.Errorf("Expected fps ~29.97, got %f", info.FPS)
	}
	if info.Frames != 300 {
		t.Errorf("Expected 300 frames, got %d", info.Frames)
	}
	if !info.HasAudio {
		t.Error("Expected audio stream to be detected")
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("Expected 1920x1080, got %dx%d", info.Width, info.Height)
	}
}

func TestParseProbeDerivesFrames(t *testing.T) {
	payload := `{"streams":[{"codec_type":"video","avg_frame_rate":"0/0","r_frame_rate":"25/1"}],"format":{"duration":"4"}}`
	info, err := parseProbe([]byte(payload))
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if info.FPS != 25 {
		t.Errorf("Expected fallback fps 25, got %f", info.FPS)
	}
	if info.Frames != 100 {
		t.Errorf("Expected 100 derived frames, got %d", info.Frames)
	}
	if info.HasAudio {
		t.Error("Expected no audio")
	}
}

func TestParseProbeRejectsEmpty(t *testing.T) {
	if _, err := parseProbe([]byte(`{"streams":[],"format":{}}`)); err == nil {
		t.Error("Expected error for streamless file")
	}
	if _, err := parseProbe([]byte(`not json`)); err == nil {
		t.Error("Expected error for invalid json")
	}
}

func TestCutArgs(t *testing.T) {
	c := NewFFmpegCodec("libx264", 0)
	args := strings.Join(c.cutArgs(CutRequest{
		Input: "src.mp4", Output: "kill1.mp4", StartFrame: 15, Frames: 27, FPS: 30, KeepAudio: true,
	}), " ")

	for _, want := range []string{"-ss 0.500000", "-frames:v 27", "-t 0.900000", "-c:a aac", "-crf 23", "kill1.mp4"} {
		if !strings.Contains(args, want) {
			t.Errorf("Expected %q in %s", want, args)
		}
	}
	if strings.Contains(args, "-an") {
		t.Error("Audio must be kept")
	}

	silent := strings.Join(c.cutArgs(CutRequest{Input: "a", Output: "b", Frames: 1, FPS: 30}), " ")
	if !strings.Contains(silent, "-an") {
		t.Error("Expected -an when audio is dropped")
	}
}

func TestMixArgs(t *testing.T) {
	c := NewFFmpegCodec("libx264", 23)

	args := strings.Join(c.mixArgs(MixRequest{
		Output:      "a.m4a",
		Segment:     "seg.mp4",
		Own:         Envelope{Split: 0.5, Head: 4, Tail: 0},
		Music:       "music.mp3",
		MusicOffset: 6,
		MusicCopies: 2,
		MusicGain:   Envelope{Split: 0.5, Head: 0.1, Tail: 0.7},
		Duration:    6,
	}), " ")

	for _, want := range []string{
		"-stream_loop 1 -i music.mp3",
		"[1:a]atrim=start=6.000000:duration=6.000000",
		"if(lt(t,0.500000),4.000000,0.000000)",
		"if(lt(t,0.500000),0.100000,0.700000)",
		"amix=inputs=2",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("Expected %q in %s", want, args)
		}
	}

	musicOnly := strings.Join(c.mixArgs(MixRequest{
		Output: "a.m4a", Music: "music.mp3", MusicCopies: 1,
		MusicGain: Envelope{Tail: 0.8}, Duration: 2,
	}), " ")
	if strings.Contains(musicOnly, "stream_loop") || strings.Contains(musicOnly, "amix") {
		t.Errorf("Unexpected loop or mix in music-only graph: %s", musicOnly)
	}
	if !strings.Contains(musicOnly, "[0:a]atrim") || !strings.Contains(musicOnly, "volume=0.800000") {
		t.Errorf("Unexpected music-only graph: %s", musicOnly)
	}
}

func TestConcatArgs(t *testing.T) {
	c := NewFFmpegCodec("h264_nvenc", 0)
	args := strings.Join(c.concatArgs(ConcatRequest{
		Inputs: []string{"a.mp4", "b.mp4", "c.mp4"}, Output: "out.mp4", Width: 1280, Height: 720, FPS: 30,
	}), " ")

	for _, want := range []string{
		"pad=1280:720",
		"[v0][a0][v1][a1][v2][a2]concat=n=3:v=1:a=1[vout][aout]",
		"-cq 28",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("Expected %q in %s", want, args)
		}
	}
}

func TestDefaultQuality(t *testing.T) {
	tests := map[string]int{"libx264": 23, "h264_nvenc": 28, "h264_videotoolbox": 75, "": 23}
	for enc, want := range tests {
		if got := DefaultQuality(enc); got != want {
			t.Errorf("%q: expected %d, got %d", enc, want, got)
		}
	}
}
