// Package validate provides reusable checks and derived metrics for
// valuation outputs. These functions can be called from tests, the CLI or
// the orchestrator to verify results and summarise projections.
package validate

import (
	"fmt"
	"math"

	"aerospace_valuation/pkg/core/projection"
)

// =============================================================================
// YEAR-OVER-YEAR (YoY) CALCULATIONS
// =============================================================================

// YoYResult holds the result of a YoY calculation.
type YoYResult struct {
	CurrentYear  int
	PriorYear    int
	CurrentValue float64
	PriorValue   float64
	ChangeAbs    float64
	ChangePct    float64
	Label        string // e.g. "broadband_revenue"
}

// CalculateYoY returns (current - prior) / prior * 100.
func CalculateYoY(current, prior float64) float64 {
	if prior == 0 {
		if current == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return (current - prior) / math.Abs(prior) * 100
}

// YoYFromSeries calculates the change of one projection line between two
// calendar years.
func YoYFromSeries(s projection.Series, line string, currentYear, priorYear int) (*YoYResult, error) {
	cur, ok := s.ByYear(currentYear)
	if !ok {
		return nil, fmt.Errorf("missing data for year %d", currentYear)
	}
	pri, ok := s.ByYear(priorYear)
	if !ok {
		return nil, fmt.Errorf("missing data for year %d", priorYear)
	}
	current, prior := value(cur, line), value(pri, line)
	return &YoYResult{
		CurrentYear:  currentYear,
		PriorYear:    priorYear,
		CurrentValue: current,
		PriorValue:   prior,
		ChangeAbs:    current - prior,
		ChangePct:    CalculateYoY(current, prior),
		Label:        line,
	}, nil
}

// =============================================================================
// CAGR (Compound Annual Growth Rate)
// =============================================================================

// CAGRResult holds the result of a CAGR calculation.
type CAGRResult struct {
	StartYear  int
	EndYear    int
	StartValue float64
	EndValue   float64
	Years      int
	CAGR       float64 // As percentage
}

// CalculateCAGR calculates compound annual growth rate.
// CAGR = ((EndValue / StartValue) ^ (1/years)) - 1
func CalculateCAGR(startValue, endValue float64, years int) float64 {
	if startValue <= 0 || endValue < 0 || years <= 0 {
		return 0
	}
	return (math.Pow(endValue/startValue, 1.0/float64(years)) - 1) * 100
}

// CAGRFromSeries calculates the CAGR of one projection line.
func CAGRFromSeries(s projection.Series, line string, startYear, endYear int) (*CAGRResult, error) {
	numYears := endYear - startYear
	if numYears <= 0 {
		return nil, fmt.Errorf("end year must be after start year")
	}
	start, ok := s.ByYear(startYear)
	if !ok {
		return nil, fmt.Errorf("missing start year %d", startYear)
	}
	end, ok := s.ByYear(endYear)
	if !ok {
		return nil, fmt.Errorf("missing end year %d", endYear)
	}
	sv, ev := value(start, line), value(end, line)
	return &CAGRResult{
		StartYear:  startYear,
		EndYear:    endYear,
		StartValue: sv,
		EndValue:   ev,
		Years:      numYears,
		CAGR:       CalculateCAGR(sv, ev, numYears),
	}, nil
}

func value(y projection.YearProjection, line string) float64 {
	switch line {
	case "revenue":
		return y.Revenue
	case "cost":
		return y.Cost
	case "cash_flow":
		return y.CashFlow
	}
	return y.Lines[line]
}

// =============================================================================
// CASH FLOW VALIDATION
// =============================================================================

// CashFlowCheck verifies Revenue - Cost = CashFlow for one year.
type CashFlowCheck struct {
	Year       int
	Revenue    float64
	Cost       float64
	Computed   float64
	Reported   float64
	Difference float64
	IsBalanced bool
	Tolerance  float64
}

// CheckCashFlows validates every year of s within tolerance and returns the
// years that fail.
func CheckCashFlows(s projection.Series, tolerance float64) []CashFlowCheck {
	var failed []CashFlowCheck
	for _, y := range s {
		computed := y.Revenue - y.Cost
		diff := y.CashFlow - computed
		c := CashFlowCheck{
			Year:       y.Year,
			Revenue:    y.Revenue,
			Cost:       y.Cost,
			Computed:   computed,
			Reported:   y.CashFlow,
			Difference: diff,
			IsBalanced: math.Abs(diff) <= tolerance,
			Tolerance:  tolerance,
		}
		if !c.IsBalanced {
			failed = append(failed, c)
		}
	}
	return failed
}
