package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything one montage run needs.
type Config struct {
	SourcePath     string `yaml:"source"`
	MusicPath      string `yaml:"music"`
	TimestampsPath string `yaml:"timestamps"`
	OutputVideo    string `yaml:"output"`
	WorkDir        string `yaml:"work_dir"`
	Workers        int    `yaml:"workers"`
	KeepWork       bool   `yaml:"keep_work"`
	Resume         bool   `yaml:"resume"`
	ShowStats      bool   `yaml:"show_stats"`
	BuildVersion   string `yaml:"-"`

	Grouping   Grouping   `yaml:"grouping"`
	Clips      Clips      `yaml:"clips"`
	Transition Transition `yaml:"transition"`
	Audio      Audio      `yaml:"audio"`
	Video      Video      `yaml:"video"`
	Detector   Detector   `yaml:"detector"`
	Logging    Logging    `yaml:"logging"`
}

// Grouping controls how raw detections are clustered.
type Grouping struct {
	MaxGap float64 `yaml:"max_gap"`
}

// Clips controls extraction of one clip per event group.
type Clips struct {
	Buffer float64 `yaml:"buffer"`
	Dir    string  `yaml:"dir"`
	Prefix string  `yaml:"prefix"`
}

// Transition selects how boundaries between clips are bridged.
type Transition struct {
	Engine  string   `yaml:"engine"` // xfade, exec, none
	Frames  int      `yaml:"frames"`
	Styles  []string `yaml:"styles"`
	Command []string `yaml:"command"`
}

// Audio holds the gain constants of the per-segment mix.
type Audio struct {
	IntroDuration     float64 `yaml:"intro_duration"`
	IntroGain         float64 `yaml:"intro_gain"`
	IntroMusicGain    float64 `yaml:"intro_music_gain"`
	AltIntro          bool    `yaml:"alt_intro"`
	AltIntroMusicGain float64 `yaml:"alt_intro_music_gain"`
	BodyGain          float64 `yaml:"body_gain"`
	BodyMusicGain     float64 `yaml:"body_music_gain"`
	ShortGain         float64 `yaml:"short_gain"`
	ShortMusicGain    float64 `yaml:"short_music_gain"`
	MusicOnlyGain     float64 `yaml:"music_only_gain"`
}

// Video holds encoder settings for every ffmpeg invocation that re-encodes.
type Video struct {
	Encoder string `yaml:"encoder"` // auto, libx264, h264_nvenc, h264_videotoolbox
	Quality int    `yaml:"quality"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	FPS     int    `yaml:"fps"`
}

// Detector configures the external event detector.
type Detector struct {
	Variant string   `yaml:"variant"` // exec, file
	Command []string `yaml:"command"`
}

// Logging configures log output.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config on top of the defaults. A missing path yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config %s not found (create one with 'killreel config init')", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Write serializes cfg to path as YAML.
func Write(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
