package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Input paths are checked by the
// pipeline itself since they may be discovered after loading.
func (c *Config) Validate() error {
	if c.Grouping.MaxGap <= 0 {
		return errors.New("grouping.max_gap must be positive")
	}
	if c.Clips.Buffer < 0 {
		return errors.New("clips.buffer must not be negative")
	}
	if strings.TrimSpace(c.Clips.Dir) == "" {
		return errors.New("clips.dir must be set")
	}
	if strings.TrimSpace(c.WorkDir) == "" {
		return errors.New("work_dir must be set")
	}
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	if err := c.validateTransition(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if c.Video.Quality < 0 {
		return errors.New("video.quality must not be negative")
	}
	switch c.Detector.Variant {
	case "", "file", "exec":
	default:
		return fmt.Errorf("detector.variant: unsupported value %q", c.Detector.Variant)
	}
	return nil
}

func (c *Config) validateTransition() error {
	switch c.Transition.Engine {
	case "xfade", "none":
	case "exec":
		if len(c.Transition.Command) == 0 {
			return errors.New("transition.command must be set when transition.engine is exec")
		}
	default:
		return fmt.Errorf("transition.engine: unsupported value %q", c.Transition.Engine)
	}
	if c.Transition.Frames < 0 {
		return errors.New("transition.frames must not be negative")
	}
	if c.Transition.Engine != "none" && len(c.Transition.Styles) == 0 {
		return errors.New("transition.styles must list at least one style")
	}
	return nil
}

func (c *Config) validateAudio() error {
	a := c.Audio
	if a.IntroDuration < 0 {
		return errors.New("audio.intro_duration must not be negative")
	}
	gains := map[string]float64{
		"intro_gain":           a.IntroGain,
		"intro_music_gain":     a.IntroMusicGain,
		"alt_intro_music_gain": a.AltIntroMusicGain,
		"body_gain":            a.BodyGain,
		"body_music_gain":      a.BodyMusicGain,
		"short_gain":           a.ShortGain,
		"short_music_gain":     a.ShortMusicGain,
		"music_only_gain":      a.MusicOnlyGain,
	}
	for name, g := range gains {
		if g < 0 {
			return fmt.Errorf("audio.%s must not be negative", name)
		}
	}
	return nil
}
