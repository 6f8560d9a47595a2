// Package growth provides the growth and cost-decline primitives every
// projection is built from. All functions are pure.
package growth

import (
	"math"

	"aerospace_valuation/pkg/core/valerr"
)

// CompoundGrowth returns initial * (1 + rate)^years.
func CompoundGrowth(initial, rate, years float64) float64 {
	return initial * math.Pow(1+rate, years)
}

// ExponentialDecline returns initial * (1 - rate)^years, floored at zero.
func ExponentialDecline(initial, rate, years float64) float64 {
	v := initial * math.Pow(1-rate, years)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// LearningExponent is the Wright's Law exponent b = -log2(1 - learningRate):
// every doubling of cumulative units multiplies unit cost by (1 - learningRate).
func LearningExponent(learningRate float64) float64 {
	return -math.Log2(1 - learningRate)
}

// WrightsLaw returns the unit cost after cumulativeUnits have been produced,
// where unit 1 costs initialCost.
func WrightsLaw(initialCost, cumulativeUnits, learningRate float64) (float64, error) {
	if learningRate < 0 || learningRate >= 1 || math.IsNaN(learningRate) {
		return 0, valerr.Invalid("learning_rate", learningRate, "must be within [0,1)")
	}
	if cumulativeUnits <= 0 || math.IsNaN(cumulativeUnits) {
		return 0, &valerr.NumericError{Op: "wrights_law", Value: cumulativeUnits}
	}

	cost := initialCost * math.Pow(cumulativeUnits, -LearningExponent(learningRate))
	if err := valerr.CheckFinite("wrights_law", cost); err != nil {
		return 0, err
	}
	return cost, nil
}

// Ratio returns cumulative / base, the unit count Wright's Law expects when
// the initial cost refers to a non-unit production base.
func Ratio(cumulative, base float64) (float64, error) {
	if base <= 0 {
		return 0, &valerr.NumericError{Op: "cumulative_ratio", Value: base}
	}
	return cumulative / base, nil
}
