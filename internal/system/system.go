package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	VideoExtensions = []string{".mp4", ".mkv", ".mov", ".avi", ".webm"}
	AudioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}
)

// InitResourceLimits raises the open file limit; every ffmpeg child holds a few.
func InitResourceLimits(logger *zap.Logger) {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		logger.Warn("could not read open file limit", zap.Error(err))
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		logger.Warn("could not raise open file limit", zap.Error(err))
	} else {
		logger.Debug("open file limit raised", zap.Uint64("limit", uint64(rLimit.Cur)))
	}
}

// FindLatestVideo returns the most recently modified video in dir.
func FindLatestVideo(dir string) (string, error) {
	return findLatest(dir, VideoExtensions, "video")
}

// FindLatestAudio returns the most recently modified audio file in dir.
func FindLatestAudio(dir string) (string, error) {
	return findLatest(dir, AudioExtensions, "audio")
}

func findLatest(dir string, extensions []string, kind string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", kind, dir)
	}

	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// GetBestH264Encoder picks the first hardware H.264 encoder ffmpeg offers,
// falling back to libx264.
func GetBestH264Encoder(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	// VideoToolbox first (macOS), then NVENC.
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}

// ResolveEncoder turns the configured encoder into a concrete one.
func ResolveEncoder(ctx context.Context, configured string) string {
	switch strings.ToLower(strings.TrimSpace(configured)) {
	case "", "auto":
		return GetBestH264Encoder(ctx)
	default:
		return configured
	}
}
