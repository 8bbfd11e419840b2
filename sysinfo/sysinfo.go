// Package sysinfo samples host and process statistics for /botinfo and GET /stats.
package sysinfo

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	log "github.com/sirupsen/logrus"
)

// Snapshot is one sample. Fields that could not be read are left zero.
type Snapshot struct {
	Platform        string  `json:"platform"`
	PlatformVersion string  `json:"platform_version"`
	KernelVersion   string  `json:"kernel_version"`
	GoVersion       string  `json:"go_version"`
	CPUCount        int     `json:"cpu_count"`
	CPUPercent      float64 `json:"cpu_percent"`
	MemoryUsedMB    uint64  `json:"memory_used_mb"`
	MemoryTotalMB   uint64  `json:"memory_total_mb"`
	MemoryPercent   float64 `json:"memory_percent"`
	HeapAllocMB     uint64  `json:"heap_alloc_mb"`
	Goroutines      int     `json:"goroutines"`
	HostUptime      uint64  `json:"host_uptime_seconds"`
	SampledAt       string  `json:"sampled_at"`
}

// Collect samples the host. Individual sampling failures are logged and skipped.
func Collect(ctx context.Context) Snapshot {
	s := Snapshot{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		SampledAt:  time.Now().UTC().Format(time.RFC3339),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapAllocMB = ms.HeapAlloc / 1024 / 1024

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.CPUCount = n
	} else {
		log.WithError(err).Debug("Failed to read cpu count")
	}

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	} else if err != nil {
		log.WithError(err).Debug("Failed to read cpu usage")
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.MemoryUsedMB = vm.Used / 1024 / 1024
		s.MemoryTotalMB = vm.Total / 1024 / 1024
		s.MemoryPercent = vm.UsedPercent
	} else {
		log.WithError(err).Debug("Failed to read memory usage")
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		s.Platform = info.Platform
		s.PlatformVersion = info.PlatformVersion
		s.KernelVersion = info.KernelVersion
		s.HostUptime = info.Uptime
	} else {
		log.WithError(err).Debug("Failed to read host info")
	}

	return s
}
