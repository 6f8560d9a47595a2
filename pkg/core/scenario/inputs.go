// Package scenario defines ScenarioInputs, the single immutable record every
// valuation operation consumes, together with its validation rules, the
// reference base case and YAML loading.
package scenario

// =============================================================================
// INPUT GROUPS
// =============================================================================

// EarthInputs drive the broadband and launch businesses. Money is in
// millions USD.
type EarthInputs struct {
	StarlinkPenetration   float64 `json:"starlink_penetration" yaml:"starlink_penetration"`
	BandwidthPrice        float64 `json:"bandwidth_price" yaml:"bandwidth_price"` // $M per Gbps-year
	BandwidthPriceDecline float64 `json:"bandwidth_price_decline" yaml:"bandwidth_price_decline"`
	SatelliteCapacityGbps float64 `json:"satellite_capacity_gbps" yaml:"satellite_capacity_gbps"`
	SatelliteCost         float64 `json:"satellite_cost" yaml:"satellite_cost"`
	SatelliteLearningRate float64 `json:"satellite_learning_rate" yaml:"satellite_learning_rate"`
	SatelliteOpex         float64 `json:"satellite_opex" yaml:"satellite_opex"` // $M per satellite-year
	LaunchVolume          float64 `json:"launch_volume" yaml:"launch_volume"`   // launches per year
	LaunchVolumeGrowth    float64 `json:"launch_volume_growth" yaml:"launch_volume_growth"`
	LaunchPrice           float64 `json:"launch_price" yaml:"launch_price"`
	LaunchLearningRate    float64 `json:"launch_learning_rate" yaml:"launch_learning_rate"`
	FullReusabilityYear   int     `json:"full_reusability_year" yaml:"full_reusability_year"`
	StarshipPayloadYear   int     `json:"starship_payload_year" yaml:"starship_payload_year"`
	TaxRate               float64 `json:"tax_rate" yaml:"tax_rate"`
}

// MarsInputs drive the colonisation programme.
type MarsInputs struct {
	FirstColonyYear     int     `json:"first_colony_year" yaml:"first_colony_year"`
	InitialColonists    float64 `json:"initial_colonists" yaml:"initial_colonists"`
	PopulationGrowth    float64 `json:"population_growth" yaml:"population_growth"`
	IndustrialBootstrap bool    `json:"industrial_bootstrap" yaml:"industrial_bootstrap"`
	OutputPerWorker     float64 `json:"output_per_worker" yaml:"output_per_worker"` // $M per labour unit-year
	OptimusCost         float64 `json:"optimus_cost" yaml:"optimus_cost"`
	OptimusLearningRate float64 `json:"optimus_learning_rate" yaml:"optimus_learning_rate"`
	OptimusProductivity float64 `json:"optimus_productivity" yaml:"optimus_productivity"`
	RobotsPerColonist   float64 `json:"robots_per_colonist" yaml:"robots_per_colonist"`
	TransportCost       float64 `json:"transport_cost" yaml:"transport_cost"` // $M per colonist
	ProgramSpend        float64 `json:"program_spend" yaml:"program_spend"`   // $M per pre-colony year
	AbandonmentCost     float64 `json:"abandonment_cost" yaml:"abandonment_cost"`
	SpilloverRatio      float64 `json:"spillover_ratio" yaml:"spillover_ratio"`
}

// FinancialInputs control discounting and the horizon.
type FinancialInputs struct {
	DiscountRate     float64 `json:"discount_rate" yaml:"discount_rate"`
	TerminalGrowth   float64 `json:"terminal_growth" yaml:"terminal_growth"`
	DilutionFactor   float64 `json:"dilution_factor" yaml:"dilution_factor"`
	ValuationYear    int     `json:"valuation_year" yaml:"valuation_year"`
	ProjectionYears  int     `json:"projection_years" yaml:"projection_years"`
	MarsHurdleSpread float64 `json:"mars_hurdle_spread" yaml:"mars_hurdle_spread"`
}

// ScenarioInputs is passed by value; nothing in the engine mutates it.
type ScenarioInputs struct {
	Earth     EarthInputs     `json:"earth" yaml:"earth"`
	Mars      MarsInputs      `json:"mars" yaml:"mars"`
	Financial FinancialInputs `json:"financial" yaml:"financial"`
}

// =============================================================================
// BASE CASE
// =============================================================================

// BaseCase returns the reference scenario used for regression checks.
func BaseCase() ScenarioInputs {
	return ScenarioInputs{
		Earth: EarthInputs{
			StarlinkPenetration:   0.15,
			BandwidthPrice:        0.195,
			BandwidthPriceDecline: 0.08,
			SatelliteCapacityGbps: 20,
			SatelliteCost:         0.8,
			SatelliteLearningRate: 0.15,
			SatelliteOpex:         0.05,
			LaunchVolume:          150,
			LaunchVolumeGrowth:    0.10,
			LaunchPrice:           70,
			LaunchLearningRate:    0.10,
			FullReusabilityYear:   2027,
			StarshipPayloadYear:   2026,
			TaxRate:               0.21,
		},
		Mars: MarsInputs{
			FirstColonyYear:     2030,
			InitialColonists:    100,
			PopulationGrowth:    0.30,
			IndustrialBootstrap: true,
			OutputPerWorker:     0.135,
			OptimusCost:         0.03,
			OptimusLearningRate: 0.08,
			OptimusProductivity: 3,
			RobotsPerColonist:   5,
			TransportCost:       10,
			ProgramSpend:        2000,
			AbandonmentCost:     1680,
			SpilloverRatio:      0.10,
		},
		Financial: FinancialInputs{
			DiscountRate:     0.12,
			TerminalGrowth:   0.03,
			DilutionFactor:   0.15,
			ValuationYear:    2024,
			ProjectionYears:  26,
			MarsHurdleSpread: 0,
		},
	}
}

// Year returns the calendar year of projection index t.
func (s ScenarioInputs) Year(t int) int {
	return s.Financial.ValuationYear + t
}

// HorizonYear is the calendar year of the final projection entry.
func (s ScenarioInputs) HorizonYear() int {
	return s.Year(s.Financial.ProjectionYears)
}

// Validate returns the first violated rule as a *valerr.InputError.
func (s ScenarioInputs) Validate() error {
	for _, f := range registry {
		if err := f.check(f.get(&s)); err != nil {
			return err
		}
	}
	return nil
}
