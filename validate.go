package stream

import (
	"fmt"
	"math"
	"unsafe"
)

// maxBadListed bounds how many out-of-tolerance elements a failed
// array keeps for the verbose report.
const maxBadListed = 9

// BadElement records one out-of-tolerance element of a failed array.
type BadElement struct {
	Index    int
	Observed float64
	// RelErr is the element's deviation measured against the array's
	// average absolute error, the ratio the verbose report prints.
	RelErr float64
}

// ArrayCheck is the validation verdict for one array.
type ArrayCheck struct {
	Name      string  // "a", "b" or "c"
	Expected  float64 // closed-form value every element should hold
	Sample    float64 // observed element 1, for the verbose report
	AvgAbsErr float64
	AvgRelErr float64
	BadCount  int          // elements whose own relative error exceeds epsilon
	Bad       []BadElement // first maxBadListed of them
	OK        bool
}

// Validation is the verdict for a full run.
type Validation struct {
	Epsilon   float64
	WidthNote string // set when the element width has no known tolerance
	Arrays    [3]ArrayCheck
	OK        bool
}

// toleranceFor returns the validation tolerance for an element width
// in bytes. Unknown widths fall back to the loose tolerance and carry
// a diagnostic note.
func toleranceFor(width int) (epsilon float64, note string) {
	switch width {
	case 4:
		return 1e-6, ""
	case 8:
		return 1e-13, ""
	}
	return 1e-6, fmt.Sprintf("WEIRD: element width = %d bytes", width)
}

// validateArrays replays the run arithmetically and compares every
// element against the closed-form result. The replay starts from the
// initial fill, applies the doubling of a that the calibration pass
// leaves behind, then iterates the four kernel recurrences once per
// repetition. All of it runs in element precision so that rounding in
// the replay matches rounding in the kernels.
func validateArrays[E Element](av, bv, cv []E, repetitions int) Validation {
	var aj, bj, cj E = 1.0, 2.0, 0.0
	aj = 2.0 * aj
	scalar := E(DefaultScalar)
	for k := 0; k < repetitions; k++ {
		cj = aj
		bj = scalar * cj
		cj = aj + bj
		aj = bj + scalar*cj
	}

	var zero E
	epsilon, note := toleranceFor(int(unsafe.Sizeof(zero)))

	v := Validation{Epsilon: epsilon, WidthNote: note}
	v.Arrays[0] = checkArray("a", av, aj, epsilon)
	v.Arrays[1] = checkArray("b", bv, bj, epsilon)
	v.Arrays[2] = checkArray("c", cv, cj, epsilon)
	v.OK = v.Arrays[0].OK && v.Arrays[1].OK && v.Arrays[2].OK
	return v
}

// checkArray compares one array against its expected value. The error
// sum accumulates in element precision. When the average relative
// error is out of tolerance, the array is scanned again to count the
// individual elements that are out of tolerance on their own.
func checkArray[E Element](name string, data []E, want E, epsilon float64) ArrayCheck {
	var sumErr E
	for _, got := range data {
		d := got - want
		if d < 0 {
			d = -d
		}
		sumErr += d
	}
	avgErr := sumErr / E(len(data))

	ck := ArrayCheck{
		Name:      name,
		Expected:  float64(want),
		AvgAbsErr: float64(avgErr),
		AvgRelErr: math.Abs(float64(avgErr / want)),
	}
	if len(data) > 1 {
		ck.Sample = float64(data[1])
	} else {
		ck.Sample = float64(data[0])
	}
	ck.OK = ck.AvgRelErr <= epsilon
	if ck.OK {
		return ck
	}

	for j, got := range data {
		if math.Abs(float64(got/want-1.0)) <= epsilon {
			continue
		}
		ck.BadCount++
		if ck.BadCount <= maxBadListed {
			ck.Bad = append(ck.Bad, BadElement{
				Index:    j,
				Observed: float64(got),
				RelErr:   math.Abs(float64((want - got) / avgErr)),
			})
		}
	}
	return ck
}
