package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ivlev/killreel/internal/events"
)

// ExecDetector runs an external detector as `<command...> <video>` and reads
// one timestamp per stdout line.
type ExecDetector struct {
	Command []string
}

func (d *ExecDetector) Detect(ctx context.Context, videoPath string) ([]float64, error) {
	args := append(append([]string(nil), d.Command[1:]...), videoPath)
	cmd := exec.CommandContext(ctx, d.Command[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("detector %s: %w: %s", d.Command[0], err, strings.TrimSpace(stderr.String()))
	}
	return events.ParseTimestamps(bytes.NewReader(out), "detector output")
}
