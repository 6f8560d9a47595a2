// Package earth values the Earth business: satellite broadband sold against a
// market-sizing curve, plus commercial launch services, with technology
// milestones switching the cost and payload regime.
package earth

import (
	"fmt"
	"math"

	"aerospace_valuation/pkg/core/growth"
	"aerospace_valuation/pkg/core/projection"
	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/tam"
	"aerospace_valuation/pkg/core/valuation"
)

// Projection line names.
const (
	LineBroadbandRevenue = "broadband_revenue"
	LineLaunchRevenue    = "launch_revenue"
	LineLaunchOps        = "launch_operations"
	LineSatelliteCapex   = "satellite_capex"
	LineFleetOpex        = "fleet_opex"
	LineTax              = "tax"

	DriverLaunches         = "launches"
	DriverFleet            = "fleet"
	DriverCapacity         = "capacity_gbps"
	DriverPrice            = "bandwidth_price"
	DriverMarketMultiplier = "market_multiplier"
	DriverLaunchCostBasis  = "launch_cost_basis"
	DriverSatsPerLaunch    = "satellites_per_launch"
)

// Config holds the structural constants of the constellation and launch
// business. Money in millions USD.
type Config struct {
	InitialFleet                float64 // satellites in orbit before index 0
	SatelliteLifetime           float64 // years
	StarlinkLaunchShare         float64 // share of launches deploying own satellites
	SatellitesPerLaunch         float64
	StarshipSatellitesPerLaunch float64
	StarshipCapacityMultiplier  float64
	ExpendableLaunchCost        float64
	ReusableLaunchCost          float64
	HistoricalLaunches          float64 // cumulative launches before index 0
}

func DefaultConfig() Config {
	return Config{
		InitialFleet:                6000,
		SatelliteLifetime:           5,
		StarlinkLaunchShare:         0.6,
		SatellitesPerLaunch:         22,
		StarshipSatellitesPerLaunch: 60,
		StarshipCapacityMultiplier:  5,
		ExpendableLaunchCost:        60,
		ReusableLaunchCost:          20,
		HistoricalLaunches:          400,
	}
}

// Model is stateless apart from its configuration and the shared,
// read-only market-sizing table; one Model serves concurrent callers.
type Model struct {
	table *tam.Table
	cfg   Config
}

func New(table *tam.Table, cfg Config) *Model {
	return &Model{table: table, cfg: cfg}
}

// Valuation is the Earth result in millions USD.
type Valuation struct {
	Projections projection.Series   `json:"projections"`
	DCF         valuation.DCFResult `json:"dcf"`
	Value       float64             `json:"value"` // equity value floored at zero
}

// Project builds per-year projections for index 0..ProjectionYears.
func (m *Model) Project(in scenario.ScenarioInputs) (projection.Series, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	e := in.Earth
	cfg := m.cfg
	ms := m.milestones(e)

	fleet := cfg.InitialFleet
	capacity := cfg.InitialFleet * e.SatelliteCapacityGbps
	cumLaunches := cfg.HistoricalLaunches
	cumSatellites := cfg.InitialFleet
	survival := 1 - 1/cfg.SatelliteLifetime

	series := make(projection.Series, 0, in.Financial.ProjectionYears+1)
	for t := 0; t <= in.Financial.ProjectionYears; t++ {
		year := in.Year(t)
		yr := projection.NewYear(t, year)
		phase := ms.PhaseAt(year)
		tf := float64(t)

		// 1. Fleet
		launches := growth.CompoundGrowth(e.LaunchVolume, e.LaunchVolumeGrowth, tf)
		cumLaunches += launches
		launchUnits, err := growth.Ratio(cumLaunches, cfg.HistoricalLaunches)
		if err != nil {
			return nil, err
		}
		deployed := launches * cfg.StarlinkLaunchShare * phase.SatellitesPerLaunch
		cumSatellites += deployed
		satUnits, err := growth.Ratio(cumSatellites, cfg.InitialFleet)
		if err != nil {
			return nil, err
		}
		fleet = fleet*survival + deployed
		capacity = capacity*survival + deployed*phase.CapacityPerSatellite

		// 2. Revenue
		price := growth.ExponentialDecline(e.BandwidthPrice, e.BandwidthPriceDecline, tf)
		adjusted := growth.ExponentialDecline(capacity, e.BandwidthPriceDecline, tf)
		multiplier, err := m.table.Lookup(adjusted)
		if err != nil {
			return nil, fmt.Errorf("market multiplier for %d: %w", year, err)
		}
		broadband := 0.0
		if e.StarlinkPenetration > 0 {
			broadband = e.StarlinkPenetration * price * multiplier * capacity
		}
		launchRevenue := 0.0
		if commercial := launches * (1 - cfg.StarlinkLaunchShare); commercial > 0 {
			launchPrice, err := growth.WrightsLaw(e.LaunchPrice, launchUnits, e.LaunchLearningRate)
			if err != nil {
				return nil, err
			}
			launchRevenue = commercial * launchPrice
		}
		yr.AddRevenue(LineBroadbandRevenue, broadband)
		yr.AddRevenue(LineLaunchRevenue, launchRevenue)

		// 3. Cost
		launchCost, err := growth.WrightsLaw(phase.LaunchCostBasis, launchUnits, e.LaunchLearningRate)
		if err != nil {
			return nil, err
		}
		satCost, err := growth.WrightsLaw(e.SatelliteCost, satUnits, e.SatelliteLearningRate)
		if err != nil {
			return nil, err
		}
		yr.AddCost(LineLaunchOps, launches*launchCost)
		yr.AddCost(LineSatelliteCapex, deployed*satCost)
		yr.AddCost(LineFleetOpex, fleet*e.SatelliteOpex)
		yr.AddCost(LineTax, e.TaxRate*yr.Revenue)

		// 4. Drivers
		yr.SetDriver(DriverLaunches, launches)
		yr.SetDriver(DriverFleet, fleet)
		yr.SetDriver(DriverCapacity, capacity)
		yr.SetDriver(DriverPrice, price)
		yr.SetDriver(DriverMarketMultiplier, multiplier)
		yr.SetDriver(DriverLaunchCostBasis, phase.LaunchCostBasis)
		yr.SetDriver(DriverSatsPerLaunch, phase.SatellitesPerLaunch)

		if err := yr.Close(); err != nil {
			return nil, fmt.Errorf("earth projection %d: %w", year, err)
		}
		series = append(series, yr)
	}
	return series, nil
}

// Value projects and discounts the Earth business. The equity value is
// floored at zero: shareholders cannot lose more than the business.
func (m *Model) Value(in scenario.ScenarioInputs) (Valuation, error) {
	series, err := m.Project(in)
	if err != nil {
		return Valuation{}, err
	}
	f := in.Financial
	dcf, err := valuation.CalculateDCF(valuation.DCFInput{
		CashFlows:      series.CashFlows(),
		DiscountRate:   f.DiscountRate,
		TerminalGrowth: f.TerminalGrowth,
		Dilution:       f.DilutionFactor,
	})
	if err != nil {
		return Valuation{}, err
	}
	return Valuation{
		Projections: series,
		DCF:         dcf,
		Value:       math.Max(0, dcf.EquityValue),
	}, nil
}
