package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Transition.Frames != 8 {
		t.Errorf("Expected 8 transition frames, got %d", cfg.Transition.Frames)
	}
	if len(cfg.Transition.Styles) != 5 {
		t.Errorf("Expected 5 styles, got %d", len(cfg.Transition.Styles))
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "killreel.yaml")
	body := "source: match.mp4\ngrouping:\n  max_gap: 2\ntransition:\n  engine: none\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SourcePath != "match.mp4" {
		t.Errorf("Expected source match.mp4, got %q", cfg.SourcePath)
	}
	if cfg.Grouping.MaxGap != 2 {
		t.Errorf("Expected max_gap 2, got %f", cfg.Grouping.MaxGap)
	}
	if cfg.Transition.Engine != "none" {
		t.Errorf("Expected engine none, got %q", cfg.Transition.Engine)
	}
	// untouched keys keep their defaults
	if cfg.Clips.Buffer != 0.5 {
		t.Errorf("Expected default buffer 0.5, got %f", cfg.Clips.Buffer)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("Expected not found error, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.MusicPath = "track.mp3"
	if err := Write(&cfg, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.MusicPath != "track.mp3" {
		t.Errorf("Expected music track.mp3, got %q", got.MusicPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero gap", func(c *Config) { c.Grouping.MaxGap = 0 }, "max_gap"},
		{"negative buffer", func(c *Config) { c.Clips.Buffer = -1 }, "buffer"},
		{"unknown engine", func(c *Config) { c.Transition.Engine = "wipe" }, "transition.engine"},
		{"exec without command", func(c *Config) { c.Transition.Engine = "exec" }, "transition.command"},
		{"no styles", func(c *Config) { c.Transition.Styles = nil }, "styles"},
		{"negative gain", func(c *Config) { c.Audio.BodyMusicGain = -0.1 }, "body_music_gain"},
		{"bad detector", func(c *Config) { c.Detector.Variant = "yolo" }, "detector.variant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
