// Copyright ©2025 The STREAM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cacheflush sweeps a buffer much larger than any CPU cache so
// that a benchmark started right after begins with cold caches. Run it
// before stream when the first-repetition behavior matters.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	stream "github.com/MemoryInterconnect/STREAM"
)

// cacheLine is the stride between touched bytes. Touching one byte per
// line replaces the whole line.
const cacheLine = 64

func main() {
	var (
		bytes  = flag.Int64("bytes", 256<<20, "sweep buffer size in bytes")
		passes = flag.Int("passes", 2, "write passes over the buffer")
		perf   = flag.Bool("perf", false, "sample hardware counters during the sweep (Linux)")
	)
	flag.Parse()

	if *bytes < cacheLine || *passes < 1 {
		fmt.Fprintln(os.Stderr, "cacheflush: need a positive buffer and at least one pass")
		os.Exit(2)
	}

	fmt.Printf("Sweeping %d MiB, %d passes, to evict cached benchmark data...\n",
		*bytes>>20, *passes)

	buf := make([]byte, *bytes)
	sweep := func() {
		for p := 0; p < *passes; p++ {
			// A different pattern each pass defeats silent store
			// elimination of the second pass.
			pattern := byte(7*p + 1)
			for i := 0; i < len(buf); i += cacheLine {
				buf[i] = pattern ^ byte(i>>12)
			}
		}
	}

	var counters *stream.PerfCounters
	var perfErr error
	start := time.Now()
	if *perf {
		counters, perfErr = stream.MeasureCounters(sweep)
	} else {
		sweep()
	}
	elapsed := time.Since(start)

	traffic := float64(*passes) * float64(*bytes)
	fmt.Printf("Swept in %v (%.1f GB/s of lines replaced)\n",
		elapsed.Round(time.Millisecond), traffic/elapsed.Seconds()/1e9)

	if perfErr != nil {
		fmt.Fprintf(os.Stderr, "hardware counters unavailable: %v\n", perfErr)
	} else if counters != nil {
		fmt.Print(counters)
	}

	runtime.GC()
}
