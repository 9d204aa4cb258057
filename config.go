// Package stream configuration constants and run parameters
package stream

import (
	"runtime"
)

// Array sizing parameters
const (
	// Default number of elements per array when no size is requested
	DefaultArraySize = 10

	// Extra elements appended to each array
	DefaultOffset = 0

	// Granularity of array placement; sizes and device offsets are
	// rounded to this boundary
	PageSize = 4096
)

// Timing parameters
const (
	// Number of times each kernel is executed
	DefaultRepetitions = 10

	// Repetition 0 warms the caches and the mapping, so at least two
	// repetitions are needed to report a timed result
	MinRepetitions = 2

	// Samples taken when estimating the clock granularity
	tickSamples = 20
)

// Kernel parameters
const (
	// Multiplier used by the Scale and Triad kernels
	DefaultScalar = 3.0
)

// Device mapping parameters
const (
	// Byte offset into the device when none is given. 0x100000000 skips
	// the first 4 GiB, which on the reference interconnect boards is
	// where the window to far memory begins.
	DefaultDeviceOffset = 0x100000000
)

// FloatType selects the element width of the three arrays.
type FloatType int

const (
	Float32 FloatType = iota + 1
	Float64
)

// Size returns the element width in bytes.
func (t FloatType) Size() int {
	if t == Float32 {
		return 4
	}
	return 8
}

// String returns the Go name of the element type.
func (t FloatType) String() string {
	if t == Float32 {
		return "float32"
	}
	return "float64"
}

// Config holds the parameters of a benchmark run. The zero value is a
// usable configuration: three small float64 arrays in process memory,
// ten repetitions, one worker per CPU.
type Config struct {
	// RequestBytes is the requested size of each array in bytes.
	// Values <= 0 fall back to DefaultArraySize elements. The actual
	// size is rounded up to a whole number of pages.
	RequestBytes int64

	// ArraySize is the fallback element count used when RequestBytes
	// is not set. Zero means DefaultArraySize.
	ArraySize int

	// Offset adds padding elements to the fallback size, shifting the
	// relative alignment of the arrays.
	Offset int

	// Repetitions is how many times each kernel runs. Zero means
	// DefaultRepetitions; values below MinRepetitions are raised to it.
	Repetitions int

	// FloatType selects 4-byte or 8-byte elements. Zero means Float64.
	FloatType FloatType

	// Threads is the number of worker goroutines per kernel pass.
	// Zero means one per CPU.
	Threads int

	// Device is an optional path to a memory device (such as /dev/mem).
	// When set, the arrays are mapped from the device instead of
	// anonymous memory.
	Device string

	// DeviceOffset is the byte offset of the first array within the
	// device. Zero means DefaultDeviceOffset. The offset is aligned
	// down to a page boundary.
	DeviceOffset int64

	// Clock overrides the time source used for all measurements.
	// Nil means a monotonic wall clock.
	Clock Clock
}

// withDefaults returns a copy of c with zero fields replaced by their
// defaults and out-of-range fields clamped.
func (c Config) withDefaults() Config {
	if c.ArraySize <= 0 {
		c.ArraySize = DefaultArraySize
	}
	if c.Offset < 0 {
		c.Offset = DefaultOffset
	}
	if c.Repetitions <= 0 {
		c.Repetitions = DefaultRepetitions
	} else if c.Repetitions < MinRepetitions {
		c.Repetitions = MinRepetitions
	}
	switch c.FloatType {
	case Float32, Float64:
	default:
		c.FloatType = Float64
	}
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.Device != "" {
		if c.DeviceOffset <= 0 {
			c.DeviceOffset = DefaultDeviceOffset
		}
		c.DeviceOffset &^= PageSize - 1
	} else {
		c.DeviceOffset = 0
	}
	return c
}

// BufferBytes returns the page-rounded size in bytes of one array.
func (c Config) BufferBytes() int64 {
	c = c.withDefaults()
	req := c.RequestBytes
	if req <= 0 {
		req = int64(c.ArraySize+c.Offset) * int64(c.FloatType.Size())
	}
	return roundPage(req)
}

// Elements returns the number of elements each array holds after
// rounding.
func (c Config) Elements() int {
	c = c.withDefaults()
	return int(c.BufferBytes() / int64(c.FloatType.Size()))
}

// roundPage rounds n up to the next multiple of PageSize.
func roundPage(n int64) int64 {
	return (n + PageSize - 1) &^ (PageSize - 1)
}
