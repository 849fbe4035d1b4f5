package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatestVideo(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.mp4")
	newer := filepath.Join(dir, "new.MKV")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, newer, other} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Now()
	os.Chtimes(old, now.Add(-time.Hour), now.Add(-time.Hour))
	os.Chtimes(newer, now, now)
	os.Chtimes(other, now.Add(time.Hour), now.Add(time.Hour))

	got, err := FindLatestVideo(dir)
	if err != nil {
		t.Fatalf("FindLatestVideo failed: %v", err)
	}
	if got != newer {
		t.Errorf("Expected %s, got %s", newer, got)
	}

	if _, err := FindLatestAudio(dir); err == nil {
		t.Error("Expected error when no audio exists")
	}
}

func TestPickEncoder(t *testing.T) {
	tests := map[string]string{
		" V....D h264_nvenc   NVIDIA NVENC H.264 encoder": "h264_nvenc",
		" V....D libx264      libx264 H.264":                "libx264",
		"h264_videotoolbox h264_nvenc":                      "h264_videotoolbox",
	}
	for listing, want := range tests {
		if got := pickEncoder(listing); got != want {
			t.Errorf("pickEncoder(%q) = %s, expected %s", listing, got, want)
		}
	}
}

func TestDefaultWorkers(t *testing.T) {
	tests := []struct {
		stats HostStats
		want  int
	}{
		{HostStats{LogicalCPUs: 8}, 4},
		{HostStats{LogicalCPUs: 1}, 1},
		{HostStats{LogicalCPUs: 64}, 8},
		{HostStats{LogicalCPUs: 16, MemAvailable: 1 << 30}, 2},
	}
	for _, tt := range tests {
		if got := DefaultWorkers(tt.stats); got != tt.want {
			t.Errorf("DefaultWorkers(%+v) = %d, expected %d", tt.stats, got, tt.want)
		}
	}
}
