// Copyright ©2025 The STREAM-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command streamlog summarizes STREAM session logs written with the
// -log flag of the stream command.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	stream "github.com/MemoryInterconnect/STREAM"
)

func main() {
	var (
		dir  = flag.String("dir", "benchmark_logs", "Directory holding session logs")
		file = flag.String("file", "", "Summarize a specific session file instead of the latest")
	)
	flag.Parse()

	path := *file
	if path == "" {
		latest, err := stream.LatestLogFile(*dir)
		if err != nil {
			log.Fatalf("Failed to find session log: %v", err)
		}
		path = latest
	}

	records, err := stream.ReadRunRecords(path)
	if err != nil {
		log.Fatalf("Failed to read session log: %v", err)
	}

	fmt.Printf("\nSession summary from %s:\n", filepath.Base(path))
	fmt.Println(strings.Repeat("=", 62))

	validated, failed := 0, 0
	for _, r := range records {
		target := "RAM"
		if r.Device != "" {
			target = fmt.Sprintf("%s+0x%x", r.Device, r.DeviceOffset)
		}
		mark := "ok"
		if r.Validated {
			validated++
		} else {
			failed++
			mark = "FAILED"
		}
		fmt.Printf("%s  %s  %d x %s  threads=%d  %s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), target,
			r.Elements, r.FloatType, r.Threads, mark)
		for _, k := range r.Kernels {
			fmt.Printf("    %-6s %12.1f MB/s  min %.6fs  avg %.6fs  max %.6fs\n",
				k.Name+":", k.BestRate, k.MinTime, k.AvgTime, k.MaxTime)
		}
	}

	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("Total: %d | Validated: %d | Failed: %d\n", len(records), validated, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
