package montecarlo

import (
	"sort"

	"aerospace_valuation/pkg/models"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of simulated totals, in billions USD.
type Summary struct {
	Requested int    `json:"requested"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Seed      uint64 `json:"seed"`

	Bear       float64 `json:"bear"`       // 25th percentile
	Base       float64 `json:"base"`       // mean
	Optimistic float64 `json:"optimistic"` // 75th percentile
	Median     float64 `json:"median"`
	StdDev     float64 `json:"std_dev"`

	Earth float64 `json:"earth"` // mean Earth value
	Mars  float64 `json:"mars"`  // mean Mars value

	Totals []float64 `json:"-"` // ascending
}

// Breakdown returns the bear/base/optimistic triple.
func (s *Summary) Breakdown() *models.Breakdown {
	return &models.Breakdown{Bear: s.Bear, Base: s.Base, Optimistic: s.Optimistic}
}

// Percentile returns the empirical p-quantile of totals, p in [0,1].
func (s *Summary) Percentile(p float64) float64 {
	if len(s.Totals) == 0 {
		return 0
	}
	return stat.Quantile(p, stat.Empirical, s.Totals, nil)
}

func summarize(results []models.ValuationResult, requested int, seed uint64) *Summary {
	totals := make([]float64, len(results))
	earth := make([]float64, len(results))
	mars := make([]float64, len(results))
	for i, r := range results {
		totals[i] = r.Total
		earth[i] = r.Earth
		mars[i] = r.Mars
	}
	sort.Float64s(totals)

	s := &Summary{
		Requested: requested,
		Succeeded: len(results),
		Failed:    requested - len(results),
		Seed:      seed,
		Base:      stat.Mean(totals, nil),
		Earth:     stat.Mean(earth, nil),
		Mars:      stat.Mean(mars, nil),
		Totals:    totals,
	}
	s.Bear = s.Percentile(0.25)
	s.Median = s.Percentile(0.5)
	s.Optimistic = s.Percentile(0.75)
	if len(totals) > 1 {
		s.StdDev = stat.StdDev(totals, nil)
	}
	return s
}
