package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/killreel/internal/config"
	"github.com/ivlev/killreel/internal/events"
)

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		cfg     config.Detector
		wantErr bool
	}{
		{config.Detector{Variant: "file"}, false},
		{config.Detector{}, false}, // default
		{config.Detector{Variant: "exec", Command: []string{"detect"}}, false},
		{config.Detector{Variant: "exec"}, true},
		{config.Detector{Variant: "yolo"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.cfg.Variant, func(t *testing.T) {
			_, err := NewDetector(tt.cfg, "")
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDetector(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			}
		})
	}
}

func TestFileDetector(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "match.mp4")
	if err := events.WriteTimestamps(events.DefaultTimestampsPath(video), []float64{1.5, 0.5}); err != nil {
		t.Fatal(err)
	}

	ts, err := (&FileDetector{}).Detect(context.Background(), video)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(ts) != 2 || ts[0] != 1.5 {
		t.Errorf("Unexpected timestamps %v", ts)
	}
}

func TestExecDetector(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "detect.sh")
	os.WriteFile(script, []byte("#!/bin/sh\necho 1.0\necho\necho 2.25\n"), 0755)
	empty := filepath.Join(dir, "empty.sh")
	os.WriteFile(empty, []byte("#!/bin/sh\nexit 0\n"), 0755)
	failing := filepath.Join(dir, "fail.sh")
	os.WriteFile(failing, []byte("#!/bin/sh\necho nope >&2\nexit 2\n"), 0755)

	ts, err := (&ExecDetector{Command: []string{script}}).Detect(context.Background(), "match.mp4")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(ts) != 2 || ts[1] != 2.25 {
		t.Errorf("Unexpected timestamps %v", ts)
	}

	if _, err := (&ExecDetector{Command: []string{empty}}).Detect(context.Background(), "match.mp4"); !errors.Is(err, events.ErrNoTimestamps) {
		t.Errorf("Expected ErrNoTimestamps, got %v", err)
	}
	if _, err := (&ExecDetector{Command: []string{failing}}).Detect(context.Background(), "match.mp4"); err == nil {
		t.Error("Expected error for failing detector")
	}
}
