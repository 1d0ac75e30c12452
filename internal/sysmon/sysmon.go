// Package sysmon samples system-wide CPU and memory usage.
package sysmon

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	MemUsed    uint64  // bytes
}

// Sample collects one system-wide CPU and memory snapshot. CPU usage is the
// delta since the previous call, so the first sample of a process may read
// zero. Fields that cannot be read are left at zero and the first error is
// returned alongside whatever was collected.
func Sample(ctx context.Context) (Stats, error) {
	var (
		s        Stats
		firstErr error
	)
	pcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		firstErr = err
	} else if len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else if vm != nil {
		s.MemPercent = vm.UsedPercent
		s.MemUsed = vm.Used
	}
	return s, firstErr
}
