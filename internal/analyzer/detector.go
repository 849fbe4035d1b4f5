package analyzer

import "context"

// Detector finds event timestamps, in seconds, in a video.
type Detector interface {
	Detect(ctx context.Context, videoPath string) ([]float64, error)
}
