//go:build linux

package stream

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// perfEvent names one hardware event and where its count lands.
type perfEvent struct {
	name   string
	typ    uint32
	config uint64
	set    func(*PerfCounters, uint64)
}

// streamEvents are the events worth watching under a bandwidth kernel:
// the memory side of the machine, not the branch predictor.
func streamEvents() []perfEvent {
	return []perfEvent{
		{"cycles", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CPU_CYCLES,
			func(pc *PerfCounters, v uint64) { pc.Cycles = v }},
		{"instructions", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_INSTRUCTIONS,
			func(pc *PerfCounters, v uint64) { pc.Instructions = v }},
		{"cache-references", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_REFERENCES,
			func(pc *PerfCounters, v uint64) { pc.CacheRefs = v }},
		{"cache-misses", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_MISSES,
			func(pc *PerfCounters, v uint64) { pc.CacheMisses = v }},
		{"LLC-read-misses", unix.PERF_TYPE_HW_CACHE,
			cacheEvent(unix.PERF_COUNT_HW_CACHE_LL, unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_RESULT_MISS),
			func(pc *PerfCounters, v uint64) { pc.LLCReadMisses = v }},
		{"dTLB-read-misses", unix.PERF_TYPE_HW_CACHE,
			cacheEvent(unix.PERF_COUNT_HW_CACHE_DTLB, unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_RESULT_MISS),
			func(pc *PerfCounters, v uint64) { pc.DTLBReadMisses = v }},
	}
}

// cacheEvent packs a cache id, op and result into a perf config value.
func cacheEvent(cache, op, result uint64) uint64 {
	return cache | op<<8 | result<<16
}

// PerfMonitor samples hardware events for the calling process through
// perf_event_open. Counters run from Start to Stop.
type PerfMonitor struct {
	events []perfEvent
	fds    []int
}

// NewPerfMonitor creates a monitor for the standard event set.
func NewPerfMonitor() *PerfMonitor {
	return &PerfMonitor{events: streamEvents()}
}

// Start opens one counter per event, disabled, then enables them all.
// Any event the kernel refuses fails the whole start.
func (m *PerfMonitor) Start() error {
	m.close()
	for _, ev := range m.events {
		attr := unix.PerfEventAttr{
			Type:   ev.typ,
			Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
			Config: ev.config,
			Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
		}
		fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			m.close()
			return NewResourceError("PerfOpen", fmt.Sprintf("cannot count %s events", ev.name), err)
		}
		m.fds = append(m.fds, fd)
	}
	for _, fd := range m.fds {
		unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0)
		unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0)
	}
	return nil
}

// Stop disables the counters, reads them out and releases them.
func (m *PerfMonitor) Stop() *PerfCounters {
	pc := &PerfCounters{}
	var buf [8]byte
	for i, fd := range m.fds {
		unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, 0)
		if n, err := unix.Read(fd, buf[:]); err == nil && n == 8 {
			m.events[i].set(pc, binary.NativeEndian.Uint64(buf[:]))
		}
	}
	m.close()
	pc.derive()
	return pc
}

func (m *PerfMonitor) close() {
	for _, fd := range m.fds {
		unix.Close(fd)
	}
	m.fds = nil
}
