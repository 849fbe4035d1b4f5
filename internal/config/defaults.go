package config

const (
	defaultWorkDir          = "work"
	defaultClipsDir         = "kill_clips"
	defaultClipPrefix       = "kill"
	defaultMaxGap           = 0.5
	defaultBuffer           = 0.5
	defaultTransitionEngine = "xfade"
	defaultTransitionFrames = 8
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
	defaultDetectorVariant  = "file"
)

// DefaultStyles is the transition palette, applied cyclically per boundary.
var DefaultStyles = []string{"rotation", "zoom_in", "zoom_out", "translation", "translation_inverse"}

// Default returns a Config populated with the stock montage settings.
func Default() Config {
	return Config{
		WorkDir: defaultWorkDir,
		Grouping: Grouping{
			MaxGap: defaultMaxGap,
		},
		Clips: Clips{
			Buffer: defaultBuffer,
			Dir:    defaultClipsDir,
			Prefix: defaultClipPrefix,
		},
		Transition: Transition{
			Engine: defaultTransitionEngine,
			Frames: defaultTransitionFrames,
			Styles: append([]string(nil), DefaultStyles...),
		},
		Audio: Audio{
			IntroDuration:     0.5,
			IntroGain:         4.0,
			IntroMusicGain:    0.1,
			AltIntroMusicGain: 0.5,
			BodyGain:          0.0,
			BodyMusicGain:     0.7,
			ShortGain:         2.5,
			ShortMusicGain:    0.8,
			MusicOnlyGain:     0.8,
		},
		Video: Video{
			Encoder: "auto",
		},
		Detector: Detector{
			Variant: defaultDetectorVariant,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
