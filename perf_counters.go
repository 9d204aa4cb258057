// Package stream hardware counter sampling around kernel measurements
package stream

import (
	"fmt"
	"strings"
)

// PerfCounters holds the hardware event counts observed around one
// measurement, plus rates derived from them. Counts cover the calling
// process only, user space only.
type PerfCounters struct {
	Cycles         uint64 `json:"cycles"`
	Instructions   uint64 `json:"instructions"`
	CacheRefs      uint64 `json:"cache_refs"`
	CacheMisses    uint64 `json:"cache_misses"`
	LLCReadMisses  uint64 `json:"llc_read_misses"`
	DTLBReadMisses uint64 `json:"dtlb_read_misses"`

	// Derived rates
	IPC      float64 `json:"ipc"`
	MissRate float64 `json:"miss_rate"`
}

// derive fills the rate fields from the raw counts.
func (pc *PerfCounters) derive() {
	if pc.Cycles > 0 {
		pc.IPC = float64(pc.Instructions) / float64(pc.Cycles)
	}
	if pc.CacheRefs > 0 {
		pc.MissRate = float64(pc.CacheMisses) / float64(pc.CacheRefs)
	}
}

// BytesPerMiss relates the memory traffic of a measurement to its
// last-level cache misses. A streaming kernel that really runs from
// memory lands near the cache line size; much larger values mean the
// arrays fit in cache.
func (pc *PerfCounters) BytesPerMiss(trafficBytes int64) float64 {
	if pc.LLCReadMisses == 0 {
		return 0
	}
	return float64(trafficBytes) / float64(pc.LLCReadMisses)
}

// String formats the counters as an indented report block.
func (pc *PerfCounters) String() string {
	var sb strings.Builder
	sb.WriteString("Hardware counters:\n")
	if pc.Cycles > 0 {
		sb.WriteString(fmt.Sprintf("  CPU cycles:        %d\n", pc.Cycles))
		sb.WriteString(fmt.Sprintf("  Instructions:      %d\n", pc.Instructions))
		sb.WriteString(fmt.Sprintf("  IPC:               %.2f\n", pc.IPC))
	}
	if pc.CacheRefs > 0 {
		sb.WriteString(fmt.Sprintf("  Cache references:  %d\n", pc.CacheRefs))
		sb.WriteString(fmt.Sprintf("  Cache misses:      %d\n", pc.CacheMisses))
		sb.WriteString(fmt.Sprintf("  Cache miss rate:   %.1f%%\n", pc.MissRate*100))
	}
	if pc.LLCReadMisses > 0 {
		sb.WriteString(fmt.Sprintf("  LLC read misses:   %d\n", pc.LLCReadMisses))
	}
	if pc.DTLBReadMisses > 0 {
		sb.WriteString(fmt.Sprintf("  dTLB read misses:  %d\n", pc.DTLBReadMisses))
	}
	return sb.String()
}

// MeasureCounters runs fn with hardware counters enabled around it.
// When counters cannot be opened (unsupported platform, restrictive
// perf_event_paranoid) fn still runs and the error says why no counts
// are available.
func MeasureCounters(fn func()) (*PerfCounters, error) {
	m := NewPerfMonitor()
	if err := m.Start(); err != nil {
		fn()
		return nil, err
	}
	fn()
	return m.Stop(), nil
}
