//go:build !linux

package stream

// PerfMonitor is a stub on platforms without perf events.
type PerfMonitor struct{}

// NewPerfMonitor creates a monitor whose Start always fails.
func NewPerfMonitor() *PerfMonitor {
	return &PerfMonitor{}
}

// Start reports that hardware counters need Linux.
func (m *PerfMonitor) Start() error {
	return NewResourceError("PerfOpen", "hardware counters require Linux perf events", nil)
}

// Stop returns empty counts.
func (m *PerfMonitor) Stop() *PerfCounters {
	return &PerfCounters{}
}
