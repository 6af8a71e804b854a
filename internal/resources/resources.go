// Package resources gathers host and Go runtime statistics for the health
// endpoint.
//
// System figures come from gopsutil and runtime figures from the runtime
// package. Collection never fails: when gopsutil cannot read a value the
// snapshot falls back to runtime data or zeros and logs the error.
package resources

import (
	"runtime"
	"time"

	"github.com/concave-dev/lumen/internal/logging"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostResources is a point-in-time resource snapshot of the daemon's host.
type HostResources struct {
	Timestamp time.Time `json:"timestamp"`

	// CPU Information
	CPUCores int     `json:"cpuCores"`
	CPUUsage float64 `json:"cpuUsage"` // percent since the previous sample (0-100)

	// Memory Information (in bytes)
	MemoryTotal     uint64  `json:"memoryTotal"`
	MemoryUsed      uint64  `json:"memoryUsed"`
	MemoryAvailable uint64  `json:"memoryAvailable"`
	MemoryUsage     float64 `json:"memoryUsage"`

	// Go Runtime Information
	GoRoutines int     `json:"goRoutines"`
	GoMemAlloc uint64  `json:"goMemAlloc"`
	GoMemSys   uint64  `json:"goMemSys"`
	GoGCCycles uint32  `json:"goGcCycles"`
	GoGCPause  float64 `json:"goGcPause"` // most recent pause in milliseconds

	Uptime time.Duration `json:"uptime"`
	Load1  float64       `json:"load1"`
	Load5  float64       `json:"load5"`
	Load15 float64       `json:"load15"`
}

// GatherHostResources collects a fresh snapshot. startTime is the daemon's
// start, used for Uptime.
func GatherHostResources(startTime time.Time) *HostResources {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	virtualMem, err := mem.VirtualMemory()
	if err != nil {
		logging.Error("Failed to get system memory stats: %v", err)
		virtualMem = &mem.VirtualMemoryStat{
			Total:     memStats.Sys,
			Used:      memStats.Alloc,
			Available: memStats.Sys - memStats.Alloc,
		}
	}

	// Zero interval compares against the previous call instead of blocking.
	var cpuUsage float64
	if percents, err := cpu.Percent(0, false); err != nil {
		logging.Debug("Failed to get CPU usage: %v", err)
	} else if len(percents) > 0 {
		cpuUsage = percents[0]
	}

	avg, err := load.Avg()
	if err != nil {
		logging.Debug("Failed to get load average: %v", err)
		avg = &load.AvgStat{}
	}

	resources := &HostResources{
		Timestamp: time.Now(),

		CPUCores: runtime.NumCPU(),
		CPUUsage: cpuUsage,

		MemoryTotal:     virtualMem.Total,
		MemoryUsed:      virtualMem.Used,
		MemoryAvailable: virtualMem.Available,
		MemoryUsage:     virtualMem.UsedPercent,

		GoRoutines: runtime.NumGoroutine(),
		GoMemAlloc: memStats.Alloc,
		GoMemSys:   memStats.Sys,
		GoGCCycles: memStats.NumGC,
		GoGCPause:  float64(memStats.PauseNs[(memStats.NumGC+255)%256]) / 1e6,

		Uptime: time.Since(startTime),
		Load1:  avg.Load1,
		Load5:  avg.Load5,
		Load15: avg.Load15,
	}

	logging.Debug("Gathered host resources: CPU=%d, Memory=%dMB, Goroutines=%d",
		resources.CPUCores, resources.MemoryTotal/(1024*1024), resources.GoRoutines)

	return resources
}
