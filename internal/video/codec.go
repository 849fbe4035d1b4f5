package video

import "context"

// Info describes a probed media file.
type Info struct {
	Duration float64
	FPS      float64
	Frames   int
	Width    int
	Height   int
	HasAudio bool
}

// CutRequest selects Frames frames starting at StartFrame from Input.
type CutRequest struct {
	Input      string
	Output     string
	StartFrame int
	Frames     int
	FPS        float64
	KeepAudio  bool
}

// XfadeRequest blends the whole of Left into the whole of Right.
type XfadeRequest struct {
	Left       string
	Right      string
	Output     string
	Transition string // ffmpeg xfade transition name
	Duration   float64
	FPS        float64
	Width      int
	Height     int
}

// Envelope is a two-step gain curve: Head until Split seconds, Tail after.
type Envelope struct {
	Split float64
	Head  float64
	Tail  float64
}

// MixRequest renders Duration seconds of audio mixing a segment's own track
// (optional) with a slice of the music track laid end to end MusicCopies times.
type MixRequest struct {
	Output      string
	Segment     string // empty when the segment carries no audio
	Own         Envelope
	Music       string
	MusicOffset float64
	MusicCopies int
	MusicGain   Envelope
	Duration    float64
}

// ConcatRequest joins Inputs in order onto a common Width x Height canvas at FPS.
type ConcatRequest struct {
	Inputs []string
	Output string
	Width  int
	Height int
	FPS    float64
}

// Codec is the media decode/encode/mux service every stage goes through.
type Codec interface {
	Probe(ctx context.Context, path string) (Info, error)
	CutFrames(ctx context.Context, req CutRequest) error
	Xfade(ctx context.Context, req XfadeRequest) error
	MixAudio(ctx context.Context, req MixRequest) error
	Mux(ctx context.Context, videoPath, audioPath, output string) error
	Concatenate(ctx context.Context, req ConcatRequest) error
}
