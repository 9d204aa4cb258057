package stream

import (
	"math"
	"reflect"
	"testing"
)

func fixedTimes(reps int, perKernel [NumKernels][]float64) TimingMatrix {
	m := newTimingMatrix(reps)
	for k := range m {
		copy(m[k], perKernel[k])
	}
	return m
}

func TestReduceSkipsWarmupRepetition(t *testing.T) {
	// Repetition 0 is grossly slow on purpose; it must not show up.
	row := []float64{9.9, 0.2, 0.1, 0.3}
	times := fixedTimes(4, [NumKernels][]float64{row, row, row, row})

	const arrayBytes = 1_000_000
	stats := Reduce(times, arrayBytes)

	if len(stats) != NumKernels {
		t.Fatalf("got %d stats, want %d", len(stats), NumKernels)
	}
	for _, s := range stats {
		if s.MinTime != 0.1 {
			t.Errorf("%v MinTime = %v, want 0.1", s.Kernel, s.MinTime)
		}
		if s.MaxTime != 0.3 {
			t.Errorf("%v MaxTime = %v, want 0.3", s.Kernel, s.MaxTime)
		}
		if math.Abs(s.AvgTime-0.2) > 1e-12 {
			t.Errorf("%v AvgTime = %v, want 0.2", s.Kernel, s.AvgTime)
		}
	}

	// MB/s at the min time: Copy moves 2 arrays, Add moves 3.
	if got, want := stats[Copy].BestRate, 1e-6*2*arrayBytes/0.1; math.Abs(got-want) > 1e-9 {
		t.Errorf("Copy BestRate = %v, want %v", got, want)
	}
	if got, want := stats[Add].BestRate, 1e-6*3*arrayBytes/0.1; math.Abs(got-want) > 1e-9 {
		t.Errorf("Add BestRate = %v, want %v", got, want)
	}
}

func TestReduceMinimumRepetitions(t *testing.T) {
	// With the minimum of two repetitions a single sample survives,
	// so min, avg and max must coincide.
	var perKernel [NumKernels][]float64
	for k := range perKernel {
		perKernel[k] = []float64{5.0, 0.25}
	}
	stats := Reduce(fixedTimes(2, perKernel), PageSize)

	for _, s := range stats {
		if s.MinTime != 0.25 || s.MaxTime != 0.25 || s.AvgTime != 0.25 {
			t.Errorf("%v: min/avg/max = %v/%v/%v, want all 0.25",
				s.Kernel, s.MinTime, s.AvgTime, s.MaxTime)
		}
	}
}

func TestReduceIsRepeatable(t *testing.T) {
	row := []float64{1.0, 0.5, 0.4, 0.6, 0.45}
	times := fixedTimes(5, [NumKernels][]float64{row, row, row, row})

	first := Reduce(times, 1<<20)
	second := Reduce(times, 1<<20)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Reduce is not repeatable: %v vs %v", first, second)
	}
}

func TestReduceKernelIdentity(t *testing.T) {
	times := newTimingMatrix(3)
	for k := range times {
		for r := range times[k] {
			times[k][r] = 1.0
		}
	}
	stats := Reduce(times, PageSize)
	for i, s := range stats {
		if s.Kernel != Kernel(i) {
			t.Errorf("stats[%d].Kernel = %v, want %v", i, s.Kernel, Kernel(i))
		}
	}
}

func TestTimingMatrixShape(t *testing.T) {
	m := newTimingMatrix(7)
	if m.Repetitions() != 7 {
		t.Errorf("Repetitions = %d, want 7", m.Repetitions())
	}
	for k := range m {
		if len(m[k]) != 7 {
			t.Errorf("kernel %d has %d slots, want 7", k, len(m[k]))
		}
	}
}
