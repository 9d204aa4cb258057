package stream

// Element is the set of element types the arrays can hold.
type Element interface {
	~float32 | ~float64
}

// Kernel identifies one of the four bandwidth kernels. The order
// matches the measurement loop: each repetition runs Copy, Scale,
// Add, Triad back to back.
type Kernel int

const (
	Copy Kernel = iota // c[j] = a[j]
	Scale              // b[j] = scalar*c[j]
	Add                // c[j] = a[j]+b[j]
	Triad              // a[j] = b[j]+scalar*c[j]
)

// NumKernels is the number of bandwidth kernels.
const NumKernels = 4

var kernelNames = [NumKernels]string{"Copy", "Scale", "Add", "Triad"}

// kernelLabels are the row labels of the summary table, padded to
// align the rate column.
var kernelLabels = [NumKernels]string{
	"Copy:      ",
	"Scale:     ",
	"Add:       ",
	"Triad:     ",
}

// String returns the kernel name.
func (k Kernel) String() string {
	if k < 0 || int(k) >= NumKernels {
		return "Unknown"
	}
	return kernelNames[k]
}

// Label returns the padded summary-table label for the kernel.
func (k Kernel) Label() string {
	if k < 0 || int(k) >= NumKernels {
		return "Unknown:   "
	}
	return kernelLabels[k]
}

// TrafficBytes returns the memory traffic one execution of the kernel
// moves, given the size in bytes of one array. Copy and Scale touch
// two arrays, Add and Triad three.
func (k Kernel) TrafficBytes(arrayBytes int64) float64 {
	switch k {
	case Add, Triad:
		return 3 * float64(arrayBytes)
	default:
		return 2 * float64(arrayBytes)
	}
}

// Span helpers. Each operates on a half-open slice range that one
// worker owns; the full kernels fan these out across workers.

func copySpan[E Element](dst, src []E) {
	copy(dst, src)
}

func scaleSpan[E Element](dst, src []E, scalar E) {
	src = src[:len(dst)]
	for j := range dst {
		dst[j] = scalar * src[j]
	}
}

func addSpan[E Element](dst, x, y []E) {
	x = x[:len(dst)]
	y = y[:len(dst)]
	for j := range dst {
		dst[j] = x[j] + y[j]
	}
}

func triadSpan[E Element](dst, x, y []E, scalar E) {
	x = x[:len(dst)]
	y = y[:len(dst)]
	for j := range dst {
		dst[j] = x[j] + scalar*y[j]
	}
}

// TunedKernels lets a platform substitute its own kernel bodies while
// keeping the harness: timing, repetition order and validation stay
// unchanged. Any nil entry falls back to the portable kernel. Each
// function receives the element count and must apply the kernel's
// exact recurrence, or validation will reject the run.
type TunedKernels struct {
	Copy  func(n int)
	Scale func(scalar float64, n int)
	Add   func(n int)
	Triad func(scalar float64, n int)
}
