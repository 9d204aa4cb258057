// Copyright ©2025 The STREAM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command stream runs the STREAM memory bandwidth benchmark.
//
// With no arguments it measures local RAM with small default arrays.
// A size argument sets the per-array size in bytes, a device argument
// maps the arrays from a memory device instead of RAM, and an offset
// argument places them at a specific byte offset within the device:
//
//	stream 268435456 /dev/mem 0x100000000
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	stream "github.com/MemoryInterconnect/STREAM"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	var (
		reps    = fs.Int("reps", stream.DefaultRepetitions, "times each kernel is executed (minimum 2)")
		offset  = fs.Int("offset", stream.DefaultOffset, "padding elements added to the default array size")
		use32   = fs.Bool("float32", false, "use 4-byte array elements instead of 8-byte")
		threads = fs.Int("threads", 0, "worker goroutines per kernel (0 = one per CPU)")
		logDir  = fs.String("log", "", "directory for JSON session logs (empty = no logging)")
		verbose = fs.Bool("v", false, "verbose validation output")
		perf    = fs.Bool("perf", false, "sample hardware counters around the kernels (Linux)")
	)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "Usage: %s [flags] [size] [device] [offset]\n", args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	cfg := stream.Config{
		Offset:      *offset,
		Repetitions: *reps,
		Threads:     *threads,
	}
	if *use32 {
		cfg.FloatType = stream.Float32
	}

	stream.WriteUsage(out, args[0], defaultBytes(cfg))

	rest := fs.Args()
	if len(rest) > 0 {
		// Unparseable or non-positive sizes fall back to the default.
		if n, err := strconv.ParseInt(rest[0], 10, 64); err == nil {
			cfg.RequestBytes = n
		}
	}
	if len(rest) > 1 {
		cfg.Device = rest[1]
	}
	if len(rest) > 2 {
		// Base 0 accepts the 0x form offsets are usually given in.
		if off, err := strconv.ParseInt(rest[2], 0, 64); err == nil {
			cfg.DeviceOffset = off
		}
	}

	b, err := stream.New(cfg)
	if err != nil {
		fmt.Fprintln(out, err)
		return 1
	}
	defer b.Close()

	b.WriteHeader(out)
	b.Initialize()

	tick := stream.WriteTick(out, b.EstimateTick())
	calibration := b.Calibrate()
	stream.WriteCalibration(out, calibration, tick)

	var counters *stream.PerfCounters
	if *perf {
		counters, err = stream.MeasureCounters(b.Measure)
		if err != nil {
			fmt.Fprintf(errOut, "hardware counters unavailable: %v\n", err)
		}
	} else {
		b.Measure()
	}

	stats := b.Summaries()
	stream.WriteSummary(out, stats)
	if counters != nil {
		stream.WritePerfCounters(out, counters, b.MeasuredTraffic())
	}

	v := b.Validate()
	stream.WriteValidation(out, v, *verbose)

	if *logDir != "" {
		logger := stream.NewResultLogger(*logDir)
		rec := stream.NewRunRecord(b, tick, calibration, stats, v)
		rec.Perf = counters
		if err := logger.Append(rec); err != nil {
			fmt.Fprintf(errOut, "result log: %v\n", err)
		} else {
			fmt.Fprintf(out, "Results logged to %s\n", logger.Path())
		}
	}
	return 0
}

// defaultBytes is the unrounded array size the usage banner reports
// for an argument-free run.
func defaultBytes(cfg stream.Config) int64 {
	elems := stream.DefaultArraySize + cfg.Offset
	return int64(elems) * int64(cfg.FloatType.Size())
}
