package validate

import (
	"fmt"
	"math"
	"strings"

	"aerospace_valuation/pkg/models"
)

// =============================================================================
// BASELINE COMPARISON
// =============================================================================

// MetricDiff compares one headline metric against its baseline.
type MetricDiff struct {
	Metric     string  `json:"metric"`
	Got        float64 `json:"got"`
	Want       float64 `json:"want"`
	Difference float64 `json:"difference"`
	Relative   float64 `json:"relative"` // |got-want| / |want|
	Within     bool    `json:"within"`
}

// BaselineReport is the result of CompareBaseline.
type BaselineReport struct {
	Tolerance float64      `json:"tolerance"`
	Metrics   []MetricDiff `json:"metrics"`
	AllPassed bool         `json:"all_passed"`
	Failed    []string     `json:"failed,omitempty"`
}

// CompareBaseline checks every headline figure of got against want within a
// relative tolerance. A zero baseline must be matched exactly. Breakdown
// figures are compared only when both results carry one.
func CompareBaseline(got, want models.ValuationResult, tolerance float64) *BaselineReport {
	r := &BaselineReport{Tolerance: tolerance, AllPassed: true}
	r.add("earth", got.Earth, want.Earth)
	r.add("mars", got.Mars, want.Mars)
	r.add("total", got.Total, want.Total)
	if got.Breakdown != nil && want.Breakdown != nil {
		r.add("bear", got.Breakdown.Bear, want.Breakdown.Bear)
		r.add("base", got.Breakdown.Base, want.Breakdown.Base)
		r.add("optimistic", got.Breakdown.Optimistic, want.Breakdown.Optimistic)
	}
	return r
}

func (r *BaselineReport) add(metric string, got, want float64) {
	d := MetricDiff{Metric: metric, Got: got, Want: want, Difference: got - want}
	if want == 0 {
		d.Within = got == 0
		if !d.Within {
			d.Relative = math.Inf(1)
		}
	} else {
		d.Relative = math.Abs(got-want) / math.Abs(want)
		d.Within = d.Relative <= r.Tolerance
	}
	if !d.Within {
		r.AllPassed = false
		r.Failed = append(r.Failed, metric)
	}
	r.Metrics = append(r.Metrics, d)
}

// String renders a one-line verdict.
func (r *BaselineReport) String() string {
	if r.AllPassed {
		return fmt.Sprintf("all %d metrics within %.1f%%", len(r.Metrics), r.Tolerance*100)
	}
	return fmt.Sprintf("outside %.1f%%: %s", r.Tolerance*100, strings.Join(r.Failed, ", "))
}
