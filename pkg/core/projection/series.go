// Package projection holds the per-year projection records the business
// models produce and the discounting engine consumes.
package projection

import (
	"sort"

	"aerospace_valuation/pkg/core/valerr"
)

// YearProjection is one articulated projection year. CashFlow always equals
// Revenue - Cost. Lines carries the named components behind the totals plus
// model drivers (fleet size, population, milestone state) for reporting.
type YearProjection struct {
	Index    int                `json:"index"`
	Year     int                `json:"year"`
	Revenue  float64            `json:"revenue"`
	Cost     float64            `json:"cost"`
	CashFlow float64            `json:"cash_flow"`
	Lines    map[string]float64 `json:"lines,omitempty"`
}

// NewYear starts an empty projection year.
func NewYear(index, year int) YearProjection {
	return YearProjection{Index: index, Year: year, Lines: make(map[string]float64)}
}

// AddRevenue books a named revenue component.
func (y *YearProjection) AddRevenue(name string, v float64) {
	y.Lines[name] = v
	y.Revenue += v
}

// AddCost books a named cost component.
func (y *YearProjection) AddCost(name string, v float64) {
	y.Lines[name] = v
	y.Cost += v
}

// SetDriver records a non-monetary driver without touching the totals.
func (y *YearProjection) SetDriver(name string, v float64) {
	y.Lines[name] = v
}

// Close derives CashFlow and rejects non-finite totals.
func (y *YearProjection) Close() error {
	y.CashFlow = y.Revenue - y.Cost
	for _, v := range []float64{y.Revenue, y.Cost, y.CashFlow} {
		if err := valerr.CheckFinite("projection", v); err != nil {
			return err
		}
	}
	return nil
}

// Series is an ordered projection, index 0 first.
type Series []YearProjection

// CashFlows extracts the cash-flow column.
func (s Series) CashFlows() []float64 {
	out := make([]float64, len(s))
	for i, y := range s {
		out[i] = y.CashFlow
	}
	return out
}

// Line extracts a named column; years without the line report 0.
func (s Series) Line(name string) []float64 {
	out := make([]float64, len(s))
	for i, y := range s {
		out[i] = y.Lines[name]
	}
	return out
}

// LineNames returns every line name used anywhere in the series, sorted.
func (s Series) LineNames() []string {
	seen := make(map[string]struct{})
	for _, y := range s {
		for name := range y.Lines {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Totals sums revenue, cost and cash flow across the horizon.
type Totals struct {
	Revenue  float64 `json:"revenue"`
	Cost     float64 `json:"cost"`
	CashFlow float64 `json:"cash_flow"`
}

func (s Series) Totals() Totals {
	var t Totals
	for _, y := range s {
		t.Revenue += y.Revenue
		t.Cost += y.Cost
		t.CashFlow += y.CashFlow
	}
	return t
}

// ByYear finds the projection for a calendar year.
func (s Series) ByYear(year int) (YearProjection, bool) {
	for _, y := range s {
		if y.Year == year {
			return y, true
		}
	}
	return YearProjection{}, false
}
