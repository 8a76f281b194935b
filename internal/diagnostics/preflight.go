// Package diagnostics provides pre-spawn resource checks.
//
// Local AI CLIs are node processes that can need hundreds of MB at startup;
// spawning one on a memory-starved host fails in confusing ways (OOM-killed
// child, empty output). The preflight check turns that into a clear error
// before the process is started.
package diagnostics

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// PreflightResult contains the result of pre-spawn checks.
type PreflightResult struct {
	OK           bool
	Warnings     []string
	Errors       []string
	AvailableMB  uint64
	UsedPercent  float64
}

// Preflight performs resource checks before a subprocess spawn.
type Preflight struct {
	enabled         bool
	minFreeMemoryMB uint64
}

// NewPreflight creates a preflight checker. A zero minFreeMemoryMB disables
// the hard memory floor; enabled=false disables the check entirely.
func NewPreflight(enabled bool, minFreeMemoryMB int) *Preflight {
	floor := uint64(0)
	if minFreeMemoryMB > 0 {
		floor = uint64(minFreeMemoryMB)
	}
	return &Preflight{
		enabled:         enabled,
		minFreeMemoryMB: floor,
	}
}

// Run performs the checks.
func (p *Preflight) Run() PreflightResult {
	result := PreflightResult{OK: true}

	if !p.enabled {
		return result
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		// Metrics unavailable is a warning, not a reason to block the spawn.
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("memory metrics unavailable: %v", err))
		return result
	}

	result.AvailableMB = vm.Available / (1 << 20)
	result.UsedPercent = vm.UsedPercent

	if p.minFreeMemoryMB > 0 {
		switch {
		case result.AvailableMB < p.minFreeMemoryMB:
			result.OK = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("insufficient free memory: %d MB available (minimum: %d MB)",
					result.AvailableMB, p.minFreeMemoryMB))
		case result.AvailableMB < p.minFreeMemoryMB*2:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("free memory approaching limit: %d MB available", result.AvailableMB))
		}
	}

	return result
}
