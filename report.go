package stream

import (
	"fmt"
	"io"
)

const hline = "-------------------------------------------------------------\n"

// WriteUsage prints the invocation banner. defaultBytes is the array
// size used when no size argument is given.
func WriteUsage(w io.Writer, prog string, defaultBytes int64) {
	fmt.Fprintf(w, "\nUsage: \t%s \t\t\t\t\t- Local RAM test with %d bytes\n", prog, defaultBytes)
	fmt.Fprintf(w, "\t%s [size]\t\t\t\t- Local RAM test with [size] bytes\n", prog)
	fmt.Fprintf(w, "\t%s [size] [/dev/mem]\t\t- /dev/mem test with [size] and offset=0x100000000\n", prog)
	fmt.Fprintf(w, "\t%s [size] [/dev/mem] [offset]\t- /dev/mem test with [size] and [offset]\n\n", prog)
}

// WriteHeader prints the run parameters: version, element width,
// array geometry, memory footprint, repetition count and worker count.
func (b *Benchmark) WriteHeader(w io.Writer) {
	cfg := b.cfg
	arrayBytes := b.bufs.Size()

	fmt.Fprint(w, hline)
	fmt.Fprintf(w, "STREAM version $Revision: %s $\n", StreamVersion)
	fmt.Fprint(w, hline)
	fmt.Fprintf(w, "This system uses %d bytes per array element.\n", cfg.FloatType.Size())
	fmt.Fprint(w, hline)
	fmt.Fprintf(w, "Array size = %d (elements), Offset = %d (elements)\n", b.Elements(), cfg.Offset)
	fmt.Fprintf(w, "Memory per array = %.1f MiB (= %.1f GiB).\n",
		float64(arrayBytes)/1024.0/1024.0,
		float64(arrayBytes)/1024.0/1024.0/1024.0)
	fmt.Fprintf(w, "Total memory required = %.1f MiB (= %.1f GiB).\n",
		3.0*float64(arrayBytes)/1024.0/1024.0,
		3.0*float64(arrayBytes)/1024.0/1024.0/1024.0)
	if b.bufs.Mapped() {
		device, offset := b.bufs.Device()
		fmt.Fprintf(w, "Arrays mapped from %s at offset 0x%x.\n", device, offset)
	}
	fmt.Fprintf(w, "Each kernel will be executed %d times.\n", cfg.Repetitions)
	fmt.Fprintf(w, " The *best* time for each kernel (excluding the first iteration)\n")
	fmt.Fprintf(w, " will be used to compute the reported bandwidth.\n")
	fmt.Fprint(w, hline)
	fmt.Fprintf(w, "Number of Threads requested = %d\n", cfg.Threads)
	fmt.Fprintf(w, "Number of Threads counted = %d\n", workerCount(cfg.Threads, b.Elements()))
	if info := CPUInfo(); info != "" {
		fmt.Fprintf(w, "%s\n", info)
	}
}

// WriteTick prints the measured clock granularity and returns the
// value to divide by: the measured tick, or one microsecond when the
// clock resolves finer than the estimator can see.
func WriteTick(w io.Writer, tick int) int {
	fmt.Fprint(w, hline)
	if tick >= 1 {
		fmt.Fprintf(w, "Your clock granularity/precision appears to be %d microseconds.\n", tick)
		return tick
	}
	fmt.Fprintf(w, "Your clock granularity appears to be less than one microsecond.\n")
	return 1
}

// WriteCalibration prints the expected per-kernel runtime from the
// calibration pass, in microseconds and in clock ticks.
func WriteCalibration(w io.Writer, microseconds, tick int) {
	if tick < 1 {
		tick = 1
	}
	fmt.Fprintf(w, "Each test below will take on the order of %d microseconds.\n", microseconds)
	fmt.Fprintf(w, "   (= %d clock ticks)\n", microseconds/tick)
	fmt.Fprintf(w, "Increase the size of the arrays if this shows that\n")
	fmt.Fprintf(w, "you are not getting at least 20 clock ticks per test.\n")
	fmt.Fprint(w, hline)
	fmt.Fprintf(w, "WARNING -- The above is only a rough guideline.\n")
	fmt.Fprintf(w, "For best results, please be sure you know the\n")
	fmt.Fprintf(w, "precision of your system timer.\n")
	fmt.Fprint(w, hline)
}

// WriteSummary prints the per-kernel result table.
func WriteSummary(w io.Writer, stats []KernelStats) {
	fmt.Fprintf(w, "Function    Best Rate MB/s  Avg time     Min time     Max time\n")
	for _, s := range stats {
		fmt.Fprintf(w, "%s%12.1f  %11.6f  %11.6f  %11.6f\n",
			s.Kernel.Label(), s.BestRate, s.AvgTime, s.MinTime, s.MaxTime)
	}
	fmt.Fprint(w, hline)
}

// WritePerfCounters prints the hardware counter block with the traffic
// of the whole measurement attributed to its LLC misses.
func WritePerfCounters(w io.Writer, pc *PerfCounters, trafficBytes int64) {
	fmt.Fprint(w, pc)
	if bpm := pc.BytesPerMiss(trafficBytes); bpm > 0 {
		fmt.Fprintf(w, "  Bytes per LLC miss: %.0f\n", bpm)
	}
	fmt.Fprint(w, hline)
}

// WriteValidation prints the validation verdict. With verbose set,
// failed arrays list their first out-of-tolerance elements and a
// passing summary of expected against observed values is appended.
func WriteValidation(w io.Writer, v Validation, verbose bool) {
	if v.WidthNote != "" {
		fmt.Fprintf(w, "%s\n", v.WidthNote)
	}
	for _, ck := range v.Arrays {
		if ck.OK {
			continue
		}
		fmt.Fprintf(w, "Failed Validation on array %s[], AvgRelAbsErr > epsilon (%e)\n", ck.Name, v.Epsilon)
		fmt.Fprintf(w, "     Expected Value: %e, AvgAbsErr: %e, AvgRelAbsErr: %e\n", ck.Expected, ck.AvgAbsErr, ck.AvgRelErr)
		if verbose {
			for _, bad := range ck.Bad {
				fmt.Fprintf(w, "         array %s: index: %d, expected: %e, observed: %e, relative error: %e\n",
					ck.Name, bad.Index, ck.Expected, bad.Observed, bad.RelErr)
			}
		}
		fmt.Fprintf(w, "     For array %s[], %d errors were found.\n", ck.Name, ck.BadCount)
	}
	if v.OK {
		fmt.Fprintf(w, "Solution Validates: avg error less than %e on all three arrays\n", v.Epsilon)
	}
	if verbose {
		fmt.Fprintf(w, "Results Validation Verbose Results: \n")
		fmt.Fprintf(w, "    Expected a(1), b(1), c(1): %f %f %f \n",
			v.Arrays[0].Expected, v.Arrays[1].Expected, v.Arrays[2].Expected)
		fmt.Fprintf(w, "    Observed a(1), b(1), c(1): %f %f %f \n",
			v.Arrays[0].Sample, v.Arrays[1].Sample, v.Arrays[2].Sample)
		fmt.Fprintf(w, "    Rel Errors on a, b, c:     %e %e %e \n",
			v.Arrays[0].AvgRelErr, v.Arrays[1].AvgRelErr, v.Arrays[2].AvgRelErr)
	}
	fmt.Fprint(w, hline)
}
