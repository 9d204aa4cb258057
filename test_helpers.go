package stream

import (
	"testing"
)

// NewOrFail creates a benchmark and fails the test if construction
// fails. The arrays are released when the test finishes.
func NewOrFail(t testing.TB, cfg Config) *Benchmark {
	t.Helper()
	b, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create benchmark: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

// RunOrFail executes the full stage sequence on a fresh benchmark:
// initialize, calibrate, measure. Validation is left to the caller.
func RunOrFail(t testing.TB, cfg Config) *Benchmark {
	t.Helper()
	b := NewOrFail(t, cfg)
	b.Initialize()
	b.Calibrate()
	b.Measure()
	return b
}

// ValidateOrFail validates a finished run and fails the test with the
// per-array diagnostics if the solution does not validate.
func ValidateOrFail(t testing.TB, b *Benchmark) Validation {
	t.Helper()
	v := b.Validate()
	if !v.OK {
		for _, ck := range v.Arrays {
			if !ck.OK {
				t.Errorf("array %s[]: expected %e, avg abs err %e, avg rel err %e (%d bad elements)",
					ck.Name, ck.Expected, ck.AvgAbsErr, ck.AvgRelErr, ck.BadCount)
			}
		}
		t.Fatalf("solution does not validate (epsilon %e)", v.Epsilon)
	}
	return v
}
