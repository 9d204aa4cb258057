package stream

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// KernelRecord is the logged form of one kernel's statistics.
type KernelRecord struct {
	Name     string  `json:"name"`
	BestRate float64 `json:"best_rate_mb_per_sec"`
	AvgTime  float64 `json:"avg_time_sec"`
	MinTime  float64 `json:"min_time_sec"`
	MaxTime  float64 `json:"max_time_sec"`
}

// RunRecord captures one full benchmark run for the session log.
type RunRecord struct {
	Timestamp     time.Time      `json:"timestamp"`
	StreamVersion string         `json:"stream_version"`
	FloatType     string         `json:"float_type"`
	ArrayBytes    int64          `json:"array_bytes"`
	Elements      int            `json:"elements"`
	Repetitions   int            `json:"repetitions"`
	Threads       int            `json:"threads"`
	Device        string         `json:"device,omitempty"`
	DeviceOffset  int64          `json:"device_offset,omitempty"`
	TickMicros    int            `json:"clock_tick_us,omitempty"`
	KernelMicros  int            `json:"per_kernel_estimate_us,omitempty"`
	Kernels       []KernelRecord `json:"kernels"`
	Perf          *PerfCounters  `json:"hardware_counters,omitempty"`
	Validated     bool           `json:"validated"`
}

// NewRunRecord assembles a RunRecord from a finished run.
func NewRunRecord(b *Benchmark, tick, calibration int, stats []KernelStats, v Validation) RunRecord {
	cfg := b.Config()
	rec := RunRecord{
		Timestamp:     time.Now(),
		StreamVersion: StreamVersion,
		FloatType:     cfg.FloatType.String(),
		ArrayBytes:    b.Buffers().Size(),
		Elements:      b.Elements(),
		Repetitions:   cfg.Repetitions,
		Threads:       cfg.Threads,
		TickMicros:    tick,
		KernelMicros:  calibration,
		Validated:     v.OK,
	}
	if b.Buffers().Mapped() {
		rec.Device, rec.DeviceOffset = b.Buffers().Device()
	}
	for _, s := range stats {
		rec.Kernels = append(rec.Kernels, KernelRecord{
			Name:     s.Kernel.String(),
			BestRate: s.BestRate,
			AvgTime:  s.AvgTime,
			MinTime:  s.MinTime,
			MaxTime:  s.MaxTime,
		})
	}
	return rec
}

// ResultLogger appends run records to a JSON session file. Records
// accumulate in memory and the whole session is rewritten on every
// append, so a crash loses at most the current run.
type ResultLogger struct {
	mu          sync.Mutex
	records     []RunRecord
	logDir      string
	sessionFile string
}

// NewResultLogger creates a logger that will write its session file
// into dir. The file is named on first append.
func NewResultLogger(dir string) *ResultLogger {
	return &ResultLogger{logDir: dir}
}

// Append adds one run record to the session and flushes it to disk.
func (rl *ResultLogger) Append(rec RunRecord) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.sessionFile == "" {
		if err := os.MkdirAll(rl.logDir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		timestamp := time.Now().Format("20060102_150405")
		rl.sessionFile = filepath.Join(rl.logDir, fmt.Sprintf("stream_%s.json", timestamp))
	}

	rl.records = append(rl.records, rec)
	return rl.flush()
}

// Path returns the session file path, or the empty string before the
// first append.
func (rl *ResultLogger) Path() string {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.sessionFile
}

// flush writes records to disk
func (rl *ResultLogger) flush() error {
	data, err := json.MarshalIndent(rl.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	return os.WriteFile(rl.sessionFile, data, 0644)
}

// LatestLogFile returns the path of the most recent session file in dir.
func LatestLogFile(dir string) (string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no log files found in %s", dir)
	}

	var latest string
	var latestTime time.Time
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latest = file
			latestTime = info.ModTime()
		}
	}
	return latest, nil
}

// ReadRunRecords loads all run records from a session file.
func ReadRunRecords(path string) ([]RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []RunRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}
