package analyzer

import (
	"context"
	"fmt"

	"github.com/ivlev/killreel/internal/config"
	"github.com/ivlev/killreel/internal/events"
)

// NewDetector creates a detector based on the specified variant
func NewDetector(cfg config.Detector, timestampsPath string) (Detector, error) {
	switch cfg.Variant {
	case "file", "":
		return &FileDetector{Path: timestampsPath}, nil
	case "exec":
		if len(cfg.Command) == 0 {
			return nil, fmt.Errorf("exec detector needs a command")
		}
		return &ExecDetector{Command: cfg.Command}, nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", cfg.Variant)
	}
}

// FileDetector replays timestamps saved by an earlier detection.
type FileDetector struct {
	Path string
}

func (d *FileDetector) Detect(_ context.Context, videoPath string) ([]float64, error) {
	path := d.Path
	if path == "" {
		path = events.DefaultTimestampsPath(videoPath)
	}
	return events.ReadTimestamps(path)
}
