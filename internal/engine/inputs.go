package engine

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/killreel/internal/config"
	"github.com/ivlev/killreel/internal/system"
)

const (
	InputVideoDir = "input/video"
	InputAudioDir = "input/audio"
	OutputDir     = "output"
)

// ResolveInputs fills in the source and music from the input folders when
// they were not given explicitly.
func ResolveInputs(cfg *config.Config) error {
	if cfg.SourcePath == "" {
		latest, err := system.FindLatestVideo(InputVideoDir)
		if err != nil {
			return fmt.Errorf("%w: no source video given and none found: %w", ErrInput, err)
		}
		cfg.SourcePath = latest
	}
	if cfg.MusicPath == "" {
		if latest, err := system.FindLatestAudio(InputAudioDir); err == nil {
			cfg.MusicPath = latest
		}
	}
	return nil
}

// DefaultOutputPath is output/<source name>_<timestamp>.mp4.
func DefaultOutputPath(sourcePath string, now time.Time) string {
	base := filepath.Base(sourcePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		name = "montage"
	}
	return filepath.Join(OutputDir, fmt.Sprintf("%s_%s.mp4", name, now.Format("20060102_150405")))
}
