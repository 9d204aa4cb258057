// Copyright ©2025 The STREAM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stream measures sustainable memory bandwidth with the four
// classic STREAM kernels: Copy, Scale, Add and Triad.
// It drives three equally sized arrays through each kernel a configurable
// number of times and reports the best observed rate in MB/s together
// with the average, minimum and maximum time per kernel.
//
// The arrays normally live in anonymous process memory, but they can also
// be mapped from a character device such as /dev/mem at a fixed physical
// offset, which turns the benchmark into a probe for remote or fabric
// attached memory.
//
// Example usage:
//
//	b, err := stream.New(stream.Config{RequestBytes: 64 << 20})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	b.Initialize()
//	b.Calibrate()
//	b.Measure()
//	for _, s := range b.Summaries() {
//		fmt.Printf("%s %.1f MB/s\n", s.Kernel, s.BestRate)
//	}
//	if v := b.Validate(); !v.OK {
//		log.Fatal("solution does not validate")
//	}
package stream
