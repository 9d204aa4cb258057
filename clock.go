package stream

import (
	"fmt"
	"time"
)

// Clock is the time source for all measurements. Implementations must
// be monotonically non-decreasing; absolute values carry no meaning,
// only differences do.
type Clock interface {
	// Seconds returns the current reading in fractional seconds.
	Seconds() float64
}

// WallClock reads the monotonic wall clock. Readings are relative to
// the moment the clock was created, which keeps the float64 mantissa
// on sub-microsecond differences instead of wasting it on the epoch.
type WallClock struct {
	start time.Time
}

// NewWallClock returns a wall clock anchored at the current instant.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// Seconds returns the time elapsed since the clock was created.
func (w *WallClock) Seconds() float64 {
	return time.Since(w.start).Seconds()
}

// CycleClock derives time from a raw cycle counter running at a fixed
// frequency, the way bare-metal boards expose their interconnect
// counters. The counter must not wrap during a run.
type CycleClock struct {
	read func() uint64
	hz   float64
}

// NewCycleClock wraps a counter read function with a known frequency.
func NewCycleClock(read func() uint64, hz float64) (*CycleClock, error) {
	if read == nil {
		return nil, NewConfigError("NewCycleClock", "nil counter read function")
	}
	if hz <= 0 {
		return nil, NewConfigError("NewCycleClock", fmt.Sprintf("frequency must be positive, got %g", hz))
	}
	return &CycleClock{read: read, hz: hz}, nil
}

// CalibrateCycleClock measures an unknown counter against the wall
// clock over the given sample window and returns a clock using the
// measured frequency. A zero sample duration uses 100ms, long enough
// to push the sleep jitter below one percent.
func CalibrateCycleClock(read func() uint64, sample time.Duration) (*CycleClock, error) {
	if read == nil {
		return nil, NewConfigError("CalibrateCycleClock", "nil counter read function")
	}
	if sample <= 0 {
		sample = 100 * time.Millisecond
	}
	c0 := read()
	t0 := time.Now()
	time.Sleep(sample)
	c1 := read()
	elapsed := time.Since(t0).Seconds()
	if c1 <= c0 || elapsed <= 0 {
		return nil, ErrZeroFrequency
	}
	return &CycleClock{read: read, hz: float64(c1-c0) / elapsed}, nil
}

// Seconds converts the current counter value to seconds.
func (c *CycleClock) Seconds() float64 {
	return float64(c.read()) / c.hz
}

// Frequency returns the counter frequency in Hz.
func (c *CycleClock) Frequency() float64 {
	return c.hz
}

// EstimateTick estimates the granularity of a clock in microseconds.
// It collects tickSamples readings spaced at least one microsecond
// apart and returns the smallest whole-microsecond gap between
// consecutive readings. A coarse clock reports its tick; a fine one
// reports zero, which callers should treat as one microsecond.
func EstimateTick(c Clock) int {
	var found [tickSamples]float64

	for i := range found {
		t1 := c.Seconds()
		t2 := c.Seconds()
		for t2-t1 < 1e-6 {
			t2 = c.Seconds()
		}
		found[i] = t2
	}

	minDelta := 1000000
	for i := 1; i < tickSamples; i++ {
		delta := int(1e6 * (found[i] - found[i-1]))
		if delta < 0 {
			delta = 0
		}
		if delta < minDelta {
			minDelta = delta
		}
	}
	return minDelta
}
