package video

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// FFmpegCodec implements Codec through the system ffmpeg/ffprobe binaries.
type FFmpegCodec struct {
	Binary      string
	ProbeBinary string
	Encoder     string // libx264, h264_nvenc, h264_videotoolbox
	Quality     int
}

// NewFFmpegCodec returns a codec encoding with the given H.264 encoder.
func NewFFmpegCodec(encoder string, quality int) *FFmpegCodec {
	if encoder == "" {
		encoder = "libx264"
	}
	if quality <= 0 {
		quality = DefaultQuality(encoder)
	}
	return &FFmpegCodec{Binary: "ffmpeg", ProbeBinary: "ffprobe", Encoder: encoder, Quality: quality}
}

// DefaultQuality picks a sensible quality value for the encoder.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28 // roughly CRF-equivalent
	default:
		return 23
	}
}

func (e *FFmpegCodec) binary() string {
	if strings.TrimSpace(e.Binary) == "" {
		return "ffmpeg"
	}
	return e.Binary
}

func (e *FFmpegCodec) probeBinary() string {
	if strings.TrimSpace(e.ProbeBinary) == "" {
		return "ffprobe"
	}
	return e.ProbeBinary
}

// CutFrames re-encodes the requested frame span; input seeking with re-encode
// is frame accurate. A source that ends early simply yields fewer frames.
func (e *FFmpegCodec) CutFrames(ctx context.Context, req CutRequest) error {
	if req.FPS <= 0 {
		return errors.New("cut: fps must be positive")
	}
	if req.Frames <= 0 {
		return errors.New("cut: frame count must be positive")
	}
	return e.run(ctx, "cut", e.cutArgs(req))
}

func (e *FFmpegCodec) cutArgs(req CutRequest) []string {
	start := float64(req.StartFrame) / req.FPS
	duration := float64(req.Frames) / req.FPS

	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.6f", start),
		"-i", req.Input,
		"-frames:v", fmt.Sprintf("%d", req.Frames),
		"-t", fmt.Sprintf("%.6f", duration),
		"-pix_fmt", "yuv420p",
		"-c:v", e.Encoder,
	}
	args = append(args, e.qualityArgs()...)
	if req.KeepAudio {
		args = append(args, "-c:a", "aac", "-b:a", "192k")
	} else {
		args = append(args, "-an")
	}
	return append(args, req.Output)
}

// Xfade blends Left into Right over Duration seconds starting at offset zero.
func (e *FFmpegCodec) Xfade(ctx context.Context, req XfadeRequest) error {
	if req.Duration <= 0 {
		return errors.New("xfade: duration must be positive")
	}
	return e.run(ctx, "xfade", e.xfadeArgs(req))
}

func (e *FFmpegCodec) xfadeArgs(req XfadeRequest) []string {
	canvas := canvasFilter(req.Width, req.Height, req.FPS)
	graph := fmt.Sprintf(
		"[0:v]%s,settb=AVTB[l];[1:v]%s,settb=AVTB[r];[l][r]xfade=transition=%s:duration=%f:offset=0[v]",
		canvas, canvas, req.Transition, req.Duration,
	)

	args := []string{
		"-y",
		"-i", req.Left,
		"-i", req.Right,
		"-filter_complex", graph,
		"-map", "[v]",
		"-an",
		"-pix_fmt", "yuv420p",
		"-c:v", e.Encoder,
	}
	args = append(args, e.qualityArgs()...)
	return append(args, req.Output)
}

// MixAudio renders the per-segment audio track.
func (e *FFmpegCodec) MixAudio(ctx context.Context, req MixRequest) error {
	if req.Duration <= 0 {
		return errors.New("mix: duration must be positive")
	}
	return e.run(ctx, "mix", e.mixArgs(req))
}

func (e *FFmpegCodec) mixArgs(req MixRequest) []string {
	args := []string{"-y"}
	musicIndex := 0
	if req.Segment != "" {
		args = append(args, "-i", req.Segment)
		musicIndex = 1
	}
	if req.MusicCopies > 1 {
		args = append(args, "-stream_loop", fmt.Sprintf("%d", req.MusicCopies-1))
	}
	args = append(args, "-i", req.Music)

	music := fmt.Sprintf("[%d:a]atrim=start=%f:duration=%f,asetpts=PTS-STARTPTS,%s",
		musicIndex, req.MusicOffset, req.Duration, req.MusicGain.volumeFilter())

	var graph string
	if req.Segment == "" {
		graph = music + "[aout]"
	} else {
		own := fmt.Sprintf("[0:a]apad,atrim=duration=%f,asetpts=PTS-STARTPTS,%s", req.Duration, req.Own.volumeFilter())
		graph = fmt.Sprintf("%s[own];%s[bg];[own][bg]amix=inputs=2:duration=first:normalize=0[aout]", own, music)
	}

	args = append(args,
		"-filter_complex", graph,
		"-map", "[aout]",
		"-t", fmt.Sprintf("%f", req.Duration),
		"-c:a", "aac", "-b:a", "192k",
		req.Output,
	)
	return args
}

// volumeFilter renders the envelope as a per-frame evaluated volume filter.
func (env Envelope) volumeFilter() string {
	if env.Split <= 0 || env.Head == env.Tail {
		return fmt.Sprintf("volume=%f", env.Tail)
	}
	return fmt.Sprintf("volume='if(lt(t,%f),%f,%f)':eval=frame", env.Split, env.Head, env.Tail)
}

// Mux attaches audioPath as the only audio stream of videoPath.
func (e *FFmpegCodec) Mux(ctx context.Context, videoPath, audioPath, output string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac", "-b:a", "192k",
		output,
	}
	return e.run(ctx, "mux", args)
}

// Concatenate joins the inputs with the concat filter. Every input is scaled and
// padded onto the same canvas first so mismatched sources never abort the join.
func (e *FFmpegCodec) Concatenate(ctx context.Context, req ConcatRequest) error {
	if len(req.Inputs) == 0 {
		return errors.New("concat: no inputs")
	}
	return e.run(ctx, "concat", e.concatArgs(req))
}

func (e *FFmpegCodec) concatArgs(req ConcatRequest) []string {
	args := []string{"-y"}
	for _, p := range req.Inputs {
		args = append(args, "-i", p)
	}

	canvas := canvasFilter(req.Width, req.Height, req.FPS)
	var graph, pairs strings.Builder
	for i := range req.Inputs {
		fmt.Fprintf(&graph, "[%d:v]%s[v%d];", i, canvas, i)
		fmt.Fprintf(&graph, "[%d:a]aresample=48000,aformat=channel_layouts=stereo[a%d];", i, i)
		fmt.Fprintf(&pairs, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&graph, "%sconcat=n=%d:v=1:a=1[vout][aout]", pairs.String(), len(req.Inputs))

	args = append(args,
		"-filter_complex", graph.String(),
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", e.Encoder,
		"-pix_fmt", "yuv420p",
	)
	args = append(args, e.qualityArgs()...)
	args = append(args, "-c:a", "aac", "-b:a", "192k", "-movflags", "+faststart", req.Output)
	return args
}

// canvasFilter letterboxes a stream onto width x height at fps.
func canvasFilter(width, height int, fps float64) string {
	f := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		width, height, width, height,
	)
	if fps > 0 {
		f += fmt.Sprintf(",fps=%f", fps)
	}
	return f + ",format=yuv420p"
}

func (e *FFmpegCodec) qualityArgs() []string {
	switch e.Encoder {
	case "h264_videotoolbox":
		// VideoToolbox does not honor -q:v everywhere, so quality maps to a bitrate.
		return []string{"-b:v", fmt.Sprintf("%dk", e.Quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", e.Quality)}
	default:
		return []string{"-crf", fmt.Sprintf("%d", e.Quality), "-preset", "medium"}
	}
}

func (e *FFmpegCodec) run(ctx context.Context, op string, args []string) error {
	cmd := exec.CommandContext(ctx, e.binary(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg %s error: %w, output: %s", op, err, tail(string(out), 2000))
	}
	return nil
}

// tail keeps the end of ffmpeg's log, where the actual error is printed.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
