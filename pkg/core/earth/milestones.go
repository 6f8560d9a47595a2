package earth

import (
	"sort"

	"aerospace_valuation/pkg/core/scenario"
)

// Milestone names.
const (
	FullReusability = "full_reusability"
	StarshipPayload = "starship_payload"
)

// Phase is the technology state in force for a projection year.
type Phase struct {
	LaunchCostBasis      float64 // $M per launch before learning
	SatellitesPerLaunch  float64
	CapacityPerSatellite float64 // Gbps
}

// Milestone switches phase parameters discretely at Year: Before applies to
// years < Year, After to years >= Year.
type Milestone struct {
	Year   int
	Before func(*Phase)
	After  func(*Phase)
}

// Milestones is the state table keyed by milestone name.
type Milestones map[string]Milestone

// milestones builds the table for one scenario.
func (m *Model) milestones(in scenario.EarthInputs) Milestones {
	cfg := m.cfg
	return Milestones{
		FullReusability: {
			Year:   in.FullReusabilityYear,
			Before: func(p *Phase) { p.LaunchCostBasis = cfg.ExpendableLaunchCost },
			After:  func(p *Phase) { p.LaunchCostBasis = cfg.ReusableLaunchCost },
		},
		StarshipPayload: {
			Year: in.StarshipPayloadYear,
			Before: func(p *Phase) {
				p.SatellitesPerLaunch = cfg.SatellitesPerLaunch
				p.CapacityPerSatellite = in.SatelliteCapacityGbps
			},
			After: func(p *Phase) {
				p.SatellitesPerLaunch = cfg.StarshipSatellitesPerLaunch
				p.CapacityPerSatellite = in.SatelliteCapacityGbps * cfg.StarshipCapacityMultiplier
			},
		},
	}
}

// PhaseAt resolves every milestone for a calendar year. Milestones are applied
// in name order so the result does not depend on map iteration.
func (ms Milestones) PhaseAt(year int) Phase {
	names := make([]string, 0, len(ms))
	for name := range ms {
		names = append(names, name)
	}
	sort.Strings(names)

	var p Phase
	for _, name := range names {
		m := ms[name]
		if year >= m.Year {
			m.After(&p)
		} else {
			m.Before(&p)
		}
	}
	return p
}

// Reached reports which milestones are in their After state for year.
func (ms Milestones) Reached(year int) map[string]bool {
	out := make(map[string]bool, len(ms))
	for name, m := range ms {
		out[name] = year >= m.Year
	}
	return out
}
