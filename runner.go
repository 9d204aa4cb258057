package stream

// Benchmark owns one benchmark run: the three arrays, the clock, the
// timing matrix and the run parameters. The stages mirror the classic
// sequence and are meant to be called in order:
//
//	b, err := stream.New(cfg)
//	defer b.Close()
//	b.Initialize()              // a=1, b=2, c=0
//	tick := b.EstimateTick()    // clock granularity
//	b.Calibrate()               // a *= 2, timed once
//	b.Measure()                 // the four kernels, R times
//	stats := b.Summaries()
//	v := b.Validate()
//
// Calibrate doubles array a and Validate expects that doubling, so a
// run that skips Calibrate does not validate.
// A Benchmark is not safe for concurrent use.
type Benchmark struct {
	cfg   Config
	clock Clock
	bufs  *Buffers
	tuned *TunedKernels
	times TimingMatrix
}

// New maps the arrays described by cfg and returns a Benchmark ready
// for Initialize. The configuration is normalized first, so the zero
// Config gives a small run in anonymous memory.
func New(cfg Config) (*Benchmark, error) {
	cfg = cfg.withDefaults()
	bufs, err := newBuffers(cfg.BufferBytes(), cfg.Device, cfg.DeviceOffset)
	if err != nil {
		return nil, err
	}
	clock := cfg.Clock
	if clock == nil {
		clock = NewWallClock()
	}
	return &Benchmark{
		cfg:   cfg,
		clock: clock,
		bufs:  bufs,
		times: newTimingMatrix(cfg.Repetitions),
	}, nil
}

// Close releases the arrays. After Close all array views are invalid.
// Closing twice returns ErrAlreadyReleased.
func (b *Benchmark) Close() error {
	return b.bufs.Release()
}

// Config returns the normalized configuration of the run.
func (b *Benchmark) Config() Config {
	return b.cfg
}

// Buffers exposes the backing memory of the three arrays.
func (b *Benchmark) Buffers() *Buffers {
	return b.bufs
}

// Arrays returns typed views of the three arrays.
func (b *Benchmark) Arrays() ArraySet {
	return b.bufs.Arrays()
}

// Elements returns the number of elements in each array.
func (b *Benchmark) Elements() int {
	return int(b.bufs.Size()) / b.cfg.FloatType.Size()
}

// SetTuned installs replacement kernel bodies. Must be called before
// Measure; a nil argument restores the portable kernels.
func (b *Benchmark) SetTuned(t *TunedKernels) {
	b.tuned = t
}

// Initialize fills the arrays with their starting values: a[j]=1,
// b[j]=2, c[j]=0. The fill runs across all workers so that on NUMA
// systems first-touch places pages near the threads that will use them.
func (b *Benchmark) Initialize() {
	if b.cfg.FloatType == Float32 {
		initArrays[float32](b)
	} else {
		initArrays[float64](b)
	}
}

// EstimateTick estimates the granularity of the run's clock in
// microseconds.
func (b *Benchmark) EstimateTick() int {
	return EstimateTick(b.clock)
}

// Calibrate times a single doubling pass over array a and returns the
// elapsed time in whole microseconds, a rough prediction of how long
// one kernel execution will take. The doubling is left in place;
// validation accounts for it.
func (b *Benchmark) Calibrate() int {
	if b.cfg.FloatType == Float32 {
		return calibrate[float32](b)
	}
	return calibrate[float64](b)
}

// Measure runs the four kernels Repetitions times each, in kernel
// order within every repetition, and records each execution's elapsed
// time. Only the kernel body is timed.
func (b *Benchmark) Measure() {
	if b.cfg.FloatType == Float32 {
		measure[float32](b)
	} else {
		measure[float64](b)
	}
}

// Times returns the recorded timing matrix. Valid after Measure.
func (b *Benchmark) Times() TimingMatrix {
	return b.times
}

// Summaries reduces the timing matrix to per-kernel statistics.
// Valid after Measure.
func (b *Benchmark) Summaries() []KernelStats {
	return Reduce(b.times, b.bufs.Size())
}

// MeasuredTraffic returns the total bytes one Measure call moves:
// every kernel's traffic, Repetitions times.
func (b *Benchmark) MeasuredTraffic() int64 {
	var total float64
	for k := Copy; k <= Triad; k++ {
		total += k.TrafficBytes(b.bufs.Size())
	}
	return int64(total) * int64(b.cfg.Repetitions)
}

// Validate checks every element of the three arrays against the
// closed-form result of the run.
func (b *Benchmark) Validate() Validation {
	if b.cfg.FloatType == Float32 {
		av, bv, cv := arraysOf[float32](b)
		return validateArrays(av, bv, cv, b.cfg.Repetitions)
	}
	av, bv, cv := arraysOf[float64](b)
	return validateArrays(av, bv, cv, b.cfg.Repetitions)
}

// arraysOf returns the three arrays as element slices.
func arraysOf[E Element](b *Benchmark) (av, bv, cv []E) {
	s := b.bufs.Arrays()
	return view[E](s.A.buf), view[E](s.B.buf), view[E](s.C.buf)
}

func initArrays[E Element](b *Benchmark) {
	av, bv, cv := arraysOf[E](b)
	parallelFor(b.cfg.Threads, len(av), func(lo, hi int) {
		for j := lo; j < hi; j++ {
			av[j] = 1.0
			bv[j] = 2.0
			cv[j] = 0.0
		}
	})
}

func calibrate[E Element](b *Benchmark) int {
	av, _, _ := arraysOf[E](b)
	t := b.clock.Seconds()
	parallelFor(b.cfg.Threads, len(av), func(lo, hi int) {
		for j := lo; j < hi; j++ {
			av[j] = 2.0 * av[j]
		}
	})
	return int(1e6 * (b.clock.Seconds() - t))
}

func measure[E Element](b *Benchmark) {
	av, bv, cv := arraysOf[E](b)
	n := len(av)
	scalar := E(DefaultScalar)
	threads := b.cfg.Threads
	tuned := b.tuned

	run := [NumKernels]func(){
		Copy: func() {
			if tuned != nil && tuned.Copy != nil {
				tuned.Copy(n)
				return
			}
			parallelFor(threads, n, func(lo, hi int) { copySpan(cv[lo:hi], av[lo:hi]) })
		},
		Scale: func() {
			if tuned != nil && tuned.Scale != nil {
				tuned.Scale(DefaultScalar, n)
				return
			}
			parallelFor(threads, n, func(lo, hi int) { scaleSpan(bv[lo:hi], cv[lo:hi], scalar) })
		},
		Add: func() {
			if tuned != nil && tuned.Add != nil {
				tuned.Add(n)
				return
			}
			parallelFor(threads, n, func(lo, hi int) { addSpan(cv[lo:hi], av[lo:hi], bv[lo:hi]) })
		},
		Triad: func() {
			if tuned != nil && tuned.Triad != nil {
				tuned.Triad(DefaultScalar, n)
				return
			}
			parallelFor(threads, n, func(lo, hi int) { triadSpan(av[lo:hi], bv[lo:hi], cv[lo:hi], scalar) })
		},
	}

	for k := 0; k < b.cfg.Repetitions; k++ {
		for kern := Copy; kern <= Triad; kern++ {
			b.times[kern][k] = b.timed(run[kern])
		}
	}
}

// timed runs one kernel execution between two clock readings.
func (b *Benchmark) timed(kernel func()) float64 {
	t := b.clock.Seconds()
	kernel()
	return b.clock.Seconds() - t
}
