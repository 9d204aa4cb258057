package stream

import (
	"sync"
)

// parallelFor splits the index range [0, n) into contiguous chunks and
// runs body(lo, hi) on each from its own goroutine, returning when all
// chunks are done. Contiguous chunks keep each worker walking its own
// stretch of the arrays, which is what a bandwidth kernel needs; an
// interleaved split would shred the hardware prefetch streams.
func parallelFor(workers, n int, body func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers = workerCount(workers, n)
	if workers == 1 {
		body(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	workers = (n + chunk - 1) / chunk

	var wg sync.WaitGroup
	wg.Add(workers)
	for workerID := 0; workerID < workers; workerID++ {
		lo := workerID * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		go func(lo, hi int) {
			defer wg.Done()
			body(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// workerCount caps the requested worker count at one worker per
// element and floors it at one.
func workerCount(workers, n int) int {
	if workers < 1 {
		workers = 1
	}
	if n > 0 && workers > n {
		workers = n
	}
	return workers
}
