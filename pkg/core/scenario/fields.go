package scenario

import (
	"fmt"
	"math"
	"strings"

	"aerospace_valuation/pkg/core/valerr"
)

// field binds a dotted name to a numeric ScenarioInputs member and its rule.
type field struct {
	name    string
	integer bool
	lo, hi  float64
	loOpen  bool // lo excluded
	hiOpen  bool // hi excluded
	get     func(*ScenarioInputs) float64
	set     func(*ScenarioInputs, float64)
}

const (
	minYear = 1950
	maxYear = 2300
)

func ratio(name string, get func(*ScenarioInputs) float64, set func(*ScenarioInputs, float64)) field {
	return field{name: name, lo: 0, hi: 1, get: get, set: set}
}

func learning(name string, get func(*ScenarioInputs) float64, set func(*ScenarioInputs, float64)) field {
	return field{name: name, lo: 0, hi: 1, hiOpen: true, get: get, set: set}
}

func nonNegative(name string, get func(*ScenarioInputs) float64, set func(*ScenarioInputs, float64)) field {
	return field{name: name, lo: 0, hi: math.Inf(1), get: get, set: set}
}

func positive(name string, get func(*ScenarioInputs) float64, set func(*ScenarioInputs, float64)) field {
	return field{name: name, lo: 0, loOpen: true, hi: math.Inf(1), get: get, set: set}
}

func year(name string, get func(*ScenarioInputs) int, set func(*ScenarioInputs, int)) field {
	return field{
		name: name, integer: true, lo: minYear, hi: maxYear,
		get: func(s *ScenarioInputs) float64 { return float64(get(s)) },
		set: func(s *ScenarioInputs, v float64) { set(s, int(math.Round(v))) },
	}
}

// registry lists every numeric input in validation order.
var registry = []field{
	// Earth
	ratio("earth.starlink_penetration",
		func(s *ScenarioInputs) float64 { return s.Earth.StarlinkPenetration },
		func(s *ScenarioInputs, v float64) { s.Earth.StarlinkPenetration = v }),
	positive("earth.bandwidth_price",
		func(s *ScenarioInputs) float64 { return s.Earth.BandwidthPrice },
		func(s *ScenarioInputs, v float64) { s.Earth.BandwidthPrice = v }),
	learning("earth.bandwidth_price_decline",
		func(s *ScenarioInputs) float64 { return s.Earth.BandwidthPriceDecline },
		func(s *ScenarioInputs, v float64) { s.Earth.BandwidthPriceDecline = v }),
	positive("earth.satellite_capacity_gbps",
		func(s *ScenarioInputs) float64 { return s.Earth.SatelliteCapacityGbps },
		func(s *ScenarioInputs, v float64) { s.Earth.SatelliteCapacityGbps = v }),
	positive("earth.satellite_cost",
		func(s *ScenarioInputs) float64 { return s.Earth.SatelliteCost },
		func(s *ScenarioInputs, v float64) { s.Earth.SatelliteCost = v }),
	learning("earth.satellite_learning_rate",
		func(s *ScenarioInputs) float64 { return s.Earth.SatelliteLearningRate },
		func(s *ScenarioInputs, v float64) { s.Earth.SatelliteLearningRate = v }),
	nonNegative("earth.satellite_opex",
		func(s *ScenarioInputs) float64 { return s.Earth.SatelliteOpex },
		func(s *ScenarioInputs, v float64) { s.Earth.SatelliteOpex = v }),
	nonNegative("earth.launch_volume",
		func(s *ScenarioInputs) float64 { return s.Earth.LaunchVolume },
		func(s *ScenarioInputs, v float64) { s.Earth.LaunchVolume = v }),
	ratio("earth.launch_volume_growth",
		func(s *ScenarioInputs) float64 { return s.Earth.LaunchVolumeGrowth },
		func(s *ScenarioInputs, v float64) { s.Earth.LaunchVolumeGrowth = v }),
	nonNegative("earth.launch_price",
		func(s *ScenarioInputs) float64 { return s.Earth.LaunchPrice },
		func(s *ScenarioInputs, v float64) { s.Earth.LaunchPrice = v }),
	learning("earth.launch_learning_rate",
		func(s *ScenarioInputs) float64 { return s.Earth.LaunchLearningRate },
		func(s *ScenarioInputs, v float64) { s.Earth.LaunchLearningRate = v }),
	year("earth.full_reusability_year",
		func(s *ScenarioInputs) int { return s.Earth.FullReusabilityYear },
		func(s *ScenarioInputs, v int) { s.Earth.FullReusabilityYear = v }),
	year("earth.starship_payload_year",
		func(s *ScenarioInputs) int { return s.Earth.StarshipPayloadYear },
		func(s *ScenarioInputs, v int) { s.Earth.StarshipPayloadYear = v }),
	ratio("earth.tax_rate",
		func(s *ScenarioInputs) float64 { return s.Earth.TaxRate },
		func(s *ScenarioInputs, v float64) { s.Earth.TaxRate = v }),

	// Mars
	year("mars.first_colony_year",
		func(s *ScenarioInputs) int { return s.Mars.FirstColonyYear },
		func(s *ScenarioInputs, v int) { s.Mars.FirstColonyYear = v }),
	positive("mars.initial_colonists",
		func(s *ScenarioInputs) float64 { return s.Mars.InitialColonists },
		func(s *ScenarioInputs, v float64) { s.Mars.InitialColonists = v }),
	ratio("mars.population_growth",
		func(s *ScenarioInputs) float64 { return s.Mars.PopulationGrowth },
		func(s *ScenarioInputs, v float64) { s.Mars.PopulationGrowth = v }),
	nonNegative("mars.output_per_worker",
		func(s *ScenarioInputs) float64 { return s.Mars.OutputPerWorker },
		func(s *ScenarioInputs, v float64) { s.Mars.OutputPerWorker = v }),
	nonNegative("mars.optimus_cost",
		func(s *ScenarioInputs) float64 { return s.Mars.OptimusCost },
		func(s *ScenarioInputs, v float64) { s.Mars.OptimusCost = v }),
	learning("mars.optimus_learning_rate",
		func(s *ScenarioInputs) float64 { return s.Mars.OptimusLearningRate },
		func(s *ScenarioInputs, v float64) { s.Mars.OptimusLearningRate = v }),
	nonNegative("mars.optimus_productivity",
		func(s *ScenarioInputs) float64 { return s.Mars.OptimusProductivity },
		func(s *ScenarioInputs, v float64) { s.Mars.OptimusProductivity = v }),
	nonNegative("mars.robots_per_colonist",
		func(s *ScenarioInputs) float64 { return s.Mars.RobotsPerColonist },
		func(s *ScenarioInputs, v float64) { s.Mars.RobotsPerColonist = v }),
	nonNegative("mars.transport_cost",
		func(s *ScenarioInputs) float64 { return s.Mars.TransportCost },
		func(s *ScenarioInputs, v float64) { s.Mars.TransportCost = v }),
	nonNegative("mars.program_spend",
		func(s *ScenarioInputs) float64 { return s.Mars.ProgramSpend },
		func(s *ScenarioInputs, v float64) { s.Mars.ProgramSpend = v }),
	nonNegative("mars.abandonment_cost",
		func(s *ScenarioInputs) float64 { return s.Mars.AbandonmentCost },
		func(s *ScenarioInputs, v float64) { s.Mars.AbandonmentCost = v }),
	ratio("mars.spillover_ratio",
		func(s *ScenarioInputs) float64 { return s.Mars.SpilloverRatio },
		func(s *ScenarioInputs, v float64) { s.Mars.SpilloverRatio = v }),

	// Financial
	positive("financial.discount_rate",
		func(s *ScenarioInputs) float64 { return s.Financial.DiscountRate },
		func(s *ScenarioInputs, v float64) { s.Financial.DiscountRate = v }),
	{
		name: "financial.terminal_growth", lo: -1, loOpen: true, hi: 1, hiOpen: true,
		get: func(s *ScenarioInputs) float64 { return s.Financial.TerminalGrowth },
		set: func(s *ScenarioInputs, v float64) { s.Financial.TerminalGrowth = v },
	},
	learning("financial.dilution_factor",
		func(s *ScenarioInputs) float64 { return s.Financial.DilutionFactor },
		func(s *ScenarioInputs, v float64) { s.Financial.DilutionFactor = v }),
	year("financial.valuation_year",
		func(s *ScenarioInputs) int { return s.Financial.ValuationYear },
		func(s *ScenarioInputs, v int) { s.Financial.ValuationYear = v }),
	{
		name: "financial.projection_years", integer: true, lo: 1, hi: 100,
		get: func(s *ScenarioInputs) float64 { return float64(s.Financial.ProjectionYears) },
		set: func(s *ScenarioInputs, v float64) { s.Financial.ProjectionYears = int(math.Round(v)) },
	},
	nonNegative("financial.mars_hurdle_spread",
		func(s *ScenarioInputs) float64 { return s.Financial.MarsHurdleSpread },
		func(s *ScenarioInputs, v float64) { s.Financial.MarsHurdleSpread = v }),
}

// boolFields are validated for presence only.
var boolFields = []string{"mars.industrial_bootstrap"}

var byName = func() map[string]*field {
	m := make(map[string]*field, len(registry))
	for i := range registry {
		m[registry[i].name] = &registry[i]
	}
	return m
}()

func (f field) check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return valerr.Invalid(f.name, v, "must be finite")
	}
	if v < f.lo || (f.loOpen && v == f.lo) || v > f.hi || (f.hiOpen && v == f.hi) {
		return valerr.Invalid(f.name, v, "must be within "+f.bounds())
	}
	return nil
}

func (f field) bounds() string {
	open, closing := "[", "]"
	if f.loOpen {
		open = "("
	}
	if f.hiOpen || math.IsInf(f.hi, 1) {
		closing = ")"
	}
	return fmt.Sprintf("%s%g,%g%s", open, f.lo, f.hi, closing)
}

// Fields lists the dotted names of every numeric input.
func Fields() []string {
	names := make([]string, len(registry))
	for i, f := range registry {
		names[i] = f.name
	}
	return names
}

// Get reads a numeric input by dotted name.
func (s ScenarioInputs) Get(name string) (float64, error) {
	f, ok := byName[strings.ToLower(name)]
	if !ok {
		return 0, valerr.Invalid(name, nil, "unknown field")
	}
	return f.get(&s), nil
}

// With returns a copy of s with the named numeric input replaced. Integer
// inputs are rounded. The copy is not validated.
func (s ScenarioInputs) With(name string, v float64) (ScenarioInputs, error) {
	f, ok := byName[strings.ToLower(name)]
	if !ok {
		return s, valerr.Invalid(name, v, "unknown field")
	}
	f.set(&s, v)
	return s, nil
}
