package models

import (
	"time"

	"aerospace_valuation/pkg/core/scenario"
)

// ValuationResult is the headline output of a valuation, in billions USD.
type ValuationResult struct {
	Earth     float64    `json:"earth" yaml:"earth"`
	Mars      float64    `json:"mars" yaml:"mars"`
	Total     float64    `json:"total" yaml:"total"`
	Breakdown *Breakdown `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

// Breakdown is the scenario spread from a simulation: bear is the 25th
// percentile, base the mean and optimistic the 75th percentile of totals.
type Breakdown struct {
	Bear       float64 `json:"bear" yaml:"bear"`
	Base       float64 `json:"base" yaml:"base"`
	Optimistic float64 `json:"optimistic" yaml:"optimistic"`
}

// Run is a persisted valuation.
type Run struct {
	ID        string                  `json:"id"`
	Kind      string                  `json:"kind"` // earth, mars, total or simulate
	Scenario  scenario.ScenarioInputs `json:"scenario"`
	Result    ValuationResult         `json:"result"`
	Samples   int                     `json:"samples,omitempty"`
	Seed      *uint64                 `json:"seed,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}
