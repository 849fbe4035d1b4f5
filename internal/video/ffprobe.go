package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NBFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// Probe runs ffprobe against path and summarizes the first video stream.
func (e *FFmpegCodec) Probe(ctx context.Context, path string) (Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, e.probeBinary(), "-v", "error", "-hide_banner",
		"-show_format", "-show_streams", "-of", "json", "--", path)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Info{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbe(out)
}

func parseProbe(data []byte) (Info, error) {
	var res probeResult
	if err := json.Unmarshal(data, &res); err != nil {
		return Info{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	info := Info{Duration: parseFloat(res.Format.Duration)}
	var videoSeen bool
	for _, s := range res.Streams {
		switch strings.ToLower(s.CodecType) {
		case "audio":
			info.HasAudio = true
		case "video":
			if videoSeen {
				continue
			}
			videoSeen = true
			info.Width, info.Height = s.Width, s.Height
			info.FPS = parseRate(s.AvgFrameRate)
			if info.FPS <= 0 {
				info.FPS = parseRate(s.RFrameRate)
			}
			if n, err := strconv.Atoi(strings.TrimSpace(s.NBFrames)); err == nil {
				info.Frames = n
			}
			if info.Duration <= 0 {
				info.Duration = parseFloat(s.Duration)
			}
		}
	}
	if !videoSeen && !info.HasAudio {
		return Info{}, errors.New("ffprobe: no audio or video streams")
	}
	if info.Frames == 0 && info.FPS > 0 {
		info.Frames = int(math.Round(info.Duration * info.FPS))
	}
	return info, nil
}

// parseRate understands ffprobe rationals such as "30000/1001".
func parseRate(value string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		return parseFloat(value)
	}
	n, d := parseFloat(num), parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) {
		return 0
	}
	return parsed
}
