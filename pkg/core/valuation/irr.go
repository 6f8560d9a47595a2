package valuation

import (
	"math"
)

const (
	irrLow       = -0.99
	irrHigh      = 10.0
	irrTolerance = 1e-10
	irrMaxIter   = 200
)

// npv is PresentValue without validation, for the bisection loop.
func npv(flows []float64, rate float64) float64 {
	var v float64
	for t, cf := range flows {
		v += cf / math.Pow(1+rate, float64(t))
	}
	return v
}

// IRR finds the rate at which the flows' net present value is zero by
// bisection on [-99%, 1000%]. A stream with no negative flow and at least one
// positive flow has an unbounded return and reports +Inf. ok is false when
// the return is undefined: all flows non-positive, or no sign change of the
// NPV inside the search interval.
func IRR(flows []float64) (rate float64, ok bool) {
	var hasPos, hasNeg bool
	for _, cf := range flows {
		if cf > 0 {
			hasPos = true
		}
		if cf < 0 {
			hasNeg = true
		}
	}
	switch {
	case !hasPos:
		return 0, false
	case !hasNeg:
		return math.Inf(1), true
	}

	lo, hi := irrLow, irrHigh
	fLo, fHi := npv(flows, lo), npv(flows, hi)
	if fLo*fHi > 0 || math.IsNaN(fLo) || math.IsNaN(fHi) {
		return 0, false
	}
	for i := 0; i < irrMaxIter && hi-lo >= irrTolerance; i++ {
		mid := (lo + hi) / 2
		fMid := npv(flows, mid)
		if (fMid > 0) == (fLo > 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}
