package stream

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks the instruction set extensions that matter for
// streaming loads and stores
type CPUFeatures struct {
	HasSSE4    bool
	HasAVX     bool
	HasAVX2    bool
	HasAVX512F bool // Foundation
	HasFMA     bool
	HasNEON    bool // ARM64 Advanced SIMD
	HasSVE     bool // ARM64 Scalable Vector Extension
	HasRVV     bool // RISC-V Vector extension
}

// Global CPU feature detection
var cpuFeatures CPUFeatures

func init() {
	detectCPUFeatures()
}

// detectCPUFeatures populates the global cpuFeatures struct
func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:     cpu.X86.HasAVX,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA,
		HasNEON:    cpu.ARM64.HasASIMD,
		HasSVE:     cpu.ARM64.HasSVE,
		HasRVV:     cpu.RISCV64.HasV,
	}
}

// CPUInfo returns a one-line description of the detected features for
// the run header.
func CPUInfo() string {
	features := []string{}

	if cpuFeatures.HasSSE4 {
		features = append(features, "SSE4")
	}
	if cpuFeatures.HasAVX {
		features = append(features, "AVX")
	}
	if cpuFeatures.HasAVX2 {
		features = append(features, "AVX2")
	}
	if cpuFeatures.HasFMA {
		features = append(features, "FMA")
	}
	if cpuFeatures.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if cpuFeatures.HasNEON {
		features = append(features, "NEON")
	}
	if cpuFeatures.HasSVE {
		features = append(features, "SVE")
	}
	if cpuFeatures.HasRVV {
		features = append(features, "RVV")
	}

	if len(features) == 0 {
		return "CPU: " + runtime.GOARCH + ", no SIMD extensions detected"
	}

	result := "CPU: " + runtime.GOARCH + ", features: "
	for i, f := range features {
		if i > 0 {
			result += ", "
		}
		result += f
	}
	return result
}
