// Package mars values the colonisation programme as a real option: colony
// cash flows are valued like any business, then an abandon/continue gate
// compares the colony's internal return with what the capital earns on Earth.
package mars

import (
	"fmt"
	"math"

	"aerospace_valuation/pkg/core/growth"
	"aerospace_valuation/pkg/core/projection"
	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/valuation"
)

// Projection line names.
const (
	LineOutput        = "colony_output"
	LineProgramSpend  = "program_spend"
	LineTransport     = "transport"
	LineRobotCapex    = "robot_capex"
	LineUpkeep        = "upkeep"
	DriverPopulation  = "population"
	DriverRobots      = "robots"
	DriverLabour      = "effective_labour"
	DriverOptimusCost = "optimus_unit_cost"
)

// Config holds the structural constants of the colony economy.
type Config struct {
	TransportLearningRate float64 // per doubling of cumulative colonists
	UpkeepPerColonist     float64 // $M per colonist-year
	ImportCostMultiplier  float64 // applied to upkeep and robots without local industry
}

func DefaultConfig() Config {
	return Config{
		TransportLearningRate: 0.2,
		UpkeepPerColonist:     1.0,
		ImportCostMultiplier:  3.0,
	}
}

type Model struct {
	cfg Config
}

func New(cfg Config) *Model {
	return &Model{cfg: cfg}
}

// Gate records the abandon/continue decision.
type Gate struct {
	HurdleRate float64 `json:"hurdle_rate"`
	IRR        float64 `json:"irr"` // 0 unless Defined and finite
	Defined    bool    `json:"defined"`
	Unbounded  bool    `json:"unbounded"`
	Continue   bool    `json:"continue"`
}

// Valuation is the Mars result in millions USD.
type Valuation struct {
	Projections          projection.Series   `json:"projections"`
	ColonyDCF            valuation.DCFResult `json:"colony_dcf"`
	ColonyValue          float64             `json:"colony_value"`
	EarlyInvestmentValue float64             `json:"early_investment_value"`
	AbandonmentCost      float64             `json:"abandonment_cost"`
	OptionValue          float64             `json:"option_value"`
	Gate                 Gate                `json:"gate"`
	Value                float64             `json:"value"` // diluted, floored at zero
}

// Population returns the colony head-count in a calendar year: zero before
// the first colony year, compound growth afterwards.
func Population(in scenario.MarsInputs, year int) float64 {
	if year < in.FirstColonyYear {
		return 0
	}
	return growth.CompoundGrowth(in.InitialColonists, in.PopulationGrowth, float64(year-in.FirstColonyYear))
}

// Project builds per-year colony projections for index 0..ProjectionYears.
func (m *Model) Project(in scenario.ScenarioInputs) (projection.Series, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	mi := in.Mars
	cfg := m.cfg

	importMultiplier := 1.0
	if !mi.IndustrialBootstrap {
		importMultiplier = cfg.ImportCostMultiplier
	}

	var prevPopulation, prevRobots, cumColonists float64
	series := make(projection.Series, 0, in.Financial.ProjectionYears+1)
	for t := 0; t <= in.Financial.ProjectionYears; t++ {
		year := in.Year(t)
		yr := projection.NewYear(t, year)

		if year < mi.FirstColonyYear {
			yr.AddCost(LineProgramSpend, mi.ProgramSpend)
			yr.SetDriver(DriverPopulation, 0)
			if err := yr.Close(); err != nil {
				return nil, err
			}
			series = append(series, yr)
			continue
		}

		// 1. Population and arrivals
		population := Population(mi, year)
		arrivals := population - prevPopulation
		cumColonists += arrivals
		units, err := growth.Ratio(cumColonists, mi.InitialColonists)
		if err != nil {
			return nil, err
		}
		seatCost, err := growth.WrightsLaw(mi.TransportCost, units, cfg.TransportLearningRate)
		if err != nil {
			return nil, err
		}

		// 2. Robots
		robots := population * mi.RobotsPerColonist
		optimusCost := growth.ExponentialDecline(mi.OptimusCost, mi.OptimusLearningRate, float64(year-in.Financial.ValuationYear))
		labour := population + robots*mi.OptimusProductivity

		yr.AddRevenue(LineOutput, labour*mi.OutputPerWorker)
		yr.AddCost(LineTransport, arrivals*seatCost)
		yr.AddCost(LineRobotCapex, (robots-prevRobots)*optimusCost*importMultiplier)
		yr.AddCost(LineUpkeep, population*cfg.UpkeepPerColonist*importMultiplier)

		yr.SetDriver(DriverPopulation, population)
		yr.SetDriver(DriverRobots, robots)
		yr.SetDriver(DriverLabour, labour)
		yr.SetDriver(DriverOptimusCost, optimusCost)

		if err := yr.Close(); err != nil {
			return nil, fmt.Errorf("mars projection %d: %w", year, err)
		}
		series = append(series, yr)
		prevPopulation, prevRobots = population, robots
	}
	return series, nil
}

// Value prices the programme as a real option:
//
//	option   = colonyValue + earlyInvestmentValue - abandonmentCost  (continue)
//	abandon  = earlyInvestmentValue - abandonmentCost
//
// The colony continues when its IRR, horizon exit value included, reaches the
// Earth-only return (discount rate plus hurdle spread). The chosen branch is
// floored at zero and diluted.
func (m *Model) Value(in scenario.ScenarioInputs) (Valuation, error) {
	series, err := m.Project(in)
	if err != nil {
		return Valuation{}, err
	}
	f := in.Financial

	// 1. Colony enterprise value
	flows := series.CashFlows()
	dcf, err := valuation.CalculateDCF(valuation.DCFInput{
		CashFlows:      flows,
		DiscountRate:   f.DiscountRate,
		TerminalGrowth: f.TerminalGrowth,
	})
	if err != nil {
		return Valuation{}, err
	}

	// 2. Early investment spillover
	spendPV, err := valuation.PresentValue(series.Line(LineProgramSpend), f.DiscountRate)
	if err != nil {
		return Valuation{}, err
	}
	early := in.Mars.SpilloverRatio * spendPV

	// 3. Continue/abandon gate
	withExit := make([]float64, len(flows))
	copy(withExit, flows)
	withExit[len(withExit)-1] += dcf.TerminalValue
	gate := Gate{HurdleRate: f.DiscountRate + f.MarsHurdleSpread}
	if rate, ok := valuation.IRR(withExit); ok {
		gate.Defined = true
		gate.Unbounded = math.IsInf(rate, 1)
		if !gate.Unbounded {
			gate.IRR = rate
		}
		gate.Continue = rate >= gate.HurdleRate
	}

	// 4. Option value
	option := dcf.EnterpriseValue + early - in.Mars.AbandonmentCost
	chosen := early - in.Mars.AbandonmentCost
	if gate.Continue {
		chosen = option
	}
	value, err := valuation.ApplyDilution(math.Max(0, chosen), f.DilutionFactor)
	if err != nil {
		return Valuation{}, err
	}

	return Valuation{
		Projections:          series,
		ColonyDCF:            dcf,
		ColonyValue:          dcf.EnterpriseValue,
		EarlyInvestmentValue: early,
		AbandonmentCost:      in.Mars.AbandonmentCost,
		OptionValue:          option,
		Gate:                 gate,
		Value:                value,
	}, nil
}
