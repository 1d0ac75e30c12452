package metrics

import (
	"runtime"
	"time"
)

// MemorySnapshot is a point-in-time reading of the Go runtime heap.
type MemorySnapshot struct {
	Taken        time.Time
	HeapAlloc    uint64 // bytes in use by live objects
	TotalAlloc   uint64 // cumulative bytes allocated
	Sys          uint64 // bytes obtained from the OS
	NumGC        uint32
	PauseTotalNs uint64
}

// MemoryDelta summarises what happened between two snapshots.
type MemoryDelta struct {
	Elapsed      time.Duration
	Allocated    uint64 // bytes allocated in the interval
	HeapGrowth   int64  // change in live heap, may be negative
	GCCycles     uint32
	GCPauseTotal time.Duration
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct {
	now func() time.Time
}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{now: time.Now}
}

// Snapshot reads current memory statistics. It briefly stops the world.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		Taken:        mc.now(),
		HeapAlloc:    m.HeapAlloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
}

// Since returns the change from before to s.
func (s MemorySnapshot) Since(before MemorySnapshot) MemoryDelta {
	return MemoryDelta{
		Elapsed:      s.Taken.Sub(before.Taken),
		Allocated:    s.TotalAlloc - before.TotalAlloc,
		HeapGrowth:   int64(s.HeapAlloc) - int64(before.HeapAlloc),
		GCCycles:     s.NumGC - before.NumGC,
		GCPauseTotal: time.Duration(s.PauseTotalNs - before.PauseTotalNs),
	}
}
