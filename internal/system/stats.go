package system

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is a snapshot of the machine a run executes on.
type HostStats struct {
	Hostname     string
	Platform     string
	LogicalCPUs  int
	MemTotal     uint64
	MemAvailable uint64
	MemUsedPct   float64
}

// CollectHostStats gathers what gopsutil can tell; missing pieces stay zero.
func CollectHostStats(ctx context.Context) HostStats {
	var s HostStats
	if info, err := host.InfoWithContext(ctx); err == nil {
		s.Hostname = info.Hostname
		s.Platform = info.Platform + " " + info.PlatformVersion
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.LogicalCPUs = n
	} else {
		s.LogicalCPUs = runtime.NumCPU()
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.MemTotal = vm.Total
		s.MemAvailable = vm.Available
		s.MemUsedPct = vm.UsedPercent
	}
	return s
}

// perWorkerMemory is a rough ffmpeg re-encode footprint at 1080p.
const perWorkerMemory = 512 << 20

// DefaultWorkers sizes the ffmpeg worker pool by CPU count, capped by memory.
func DefaultWorkers(s HostStats) int {
	workers := s.LogicalCPUs / 2
	if s.MemAvailable > 0 {
		if byMem := int(s.MemAvailable / perWorkerMemory); byMem < workers {
			workers = byMem
		}
	}
	if workers < 1 {
		workers = 1
	}
	if workers > 8 {
		workers = 8
	}
	return workers
}
