package events

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoTimestamps is returned when a timestamps file holds no detections.
var ErrNoTimestamps = errors.New("no event timestamps")

// ReadTimestamps parses a newline-delimited list of seconds. Blank lines are skipped.
func ReadTimestamps(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timestamps: %w", err)
	}
	defer f.Close()
	return ParseTimestamps(f, path)
}

// ParseTimestamps reads timestamps from r; name prefixes error messages.
func ParseTimestamps(r io.Reader, name string) ([]float64, error) {
	var out []float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		ts, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid timestamp %q", name, line, text)
		}
		if math.IsNaN(ts) || math.IsInf(ts, 0) {
			return nil, fmt.Errorf("%s:%d: timestamp %q is not a finite number", name, line, text)
		}
		if ts < 0 {
			return nil, fmt.Errorf("%s:%d: negative timestamp %v", name, line, ts)
		}
		out = append(out, ts)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read timestamps: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoTimestamps)
	}
	return out, nil
}

// WriteTimestamps persists one timestamp per line, without a header.
func WriteTimestamps(path string, timestamps []float64) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	var b strings.Builder
	for _, ts := range timestamps {
		b.WriteString(strconv.FormatFloat(ts, 'f', -1, 64))
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// DefaultTimestampsPath derives the timestamps file name from the video name,
// e.g. match.mp4 -> match_kill_timestamps.txt next to the video.
func DefaultTimestampsPath(videoPath string) string {
	base := filepath.Base(videoPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(videoPath), name+"_kill_timestamps.txt")
}
