package stream

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TimingMatrix records the elapsed seconds of every kernel execution,
// indexed by kernel then repetition.
type TimingMatrix [NumKernels][]float64

func newTimingMatrix(repetitions int) TimingMatrix {
	var m TimingMatrix
	for k := range m {
		m[k] = make([]float64, repetitions)
	}
	return m
}

// Repetitions returns the number of recorded repetitions per kernel.
func (m TimingMatrix) Repetitions() int {
	return len(m[0])
}

// KernelStats summarizes the timed repetitions of one kernel.
// Repetition 0 is excluded everywhere: it pays for cache warmup and,
// on a device mapping, for the first faults on each page.
type KernelStats struct {
	Kernel   Kernel
	BestRate float64 // MB/s at the minimum time, 1 MB = 1e6 bytes
	AvgTime  float64 // seconds
	MinTime  float64 // seconds
	MaxTime  float64 // seconds
}

// Reduce computes per-kernel statistics from a timing matrix.
// arrayBytes is the size of one array and scales the traffic term of
// the best rate. Reduce reads the matrix and can be applied any
// number of times with the same result.
func Reduce(times TimingMatrix, arrayBytes int64) []KernelStats {
	out := make([]KernelStats, NumKernels)
	for k := Copy; k <= Triad; k++ {
		timed := times[k][1:]
		min := floats.Min(timed)
		out[k] = KernelStats{
			Kernel:   k,
			BestRate: 1e-6 * k.TrafficBytes(arrayBytes) / min,
			AvgTime:  stat.Mean(timed, nil),
			MinTime:  min,
			MaxTime:  floats.Max(timed),
		}
	}
	return out
}
