// Package pipeline wires the Earth and Mars models, discounting, simulation
// and persistence into the public valuation operations.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aerospace_valuation/pkg/core/assumption"
	"aerospace_valuation/pkg/core/earth"
	"aerospace_valuation/pkg/core/logging"
	"aerospace_valuation/pkg/core/mars"
	"aerospace_valuation/pkg/core/montecarlo"
	"aerospace_valuation/pkg/core/projection"
	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/store"
	"aerospace_valuation/pkg/core/tam"
	"aerospace_valuation/pkg/core/validate"
	"aerospace_valuation/pkg/core/valuation"
	"aerospace_valuation/pkg/models"
)

// Segment weights in the total.
const (
	EarthWeight = 1.0
	MarsWeight  = 1.0
)

// Kind names a persisted run.
type Kind string

const (
	KindEarth    Kind = "earth"
	KindMars     Kind = "mars"
	KindTotal    Kind = "total"
	KindSimulate Kind = "simulate"
)

// ValidationConfig controls the cash-flow articulation check run on every
// projection.
type ValidationConfig struct {
	EnableStrictValidation bool    // If true, a mismatch fails the valuation
	CashFlowTolerance      float64 // millions USD
}

// Orchestrator is safe for concurrent use once built.
type Orchestrator struct {
	earth            *earth.Model
	mars             *mars.Model
	repo             store.Repository
	validationConfig ValidationConfig
	logger           *slog.Logger
}

type Option func(*options)

type options struct {
	earthCfg   earth.Config
	marsCfg    mars.Config
	repo       store.Repository
	validation ValidationConfig
	logger     *slog.Logger
}

// WithRepository persists every Run and Simulate result.
func WithRepository(repo store.Repository) Option {
	return func(o *options) { o.repo = repo }
}

func WithEarthConfig(cfg earth.Config) Option {
	return func(o *options) { o.earthCfg = cfg }
}

func WithMarsConfig(cfg mars.Config) Option {
	return func(o *options) { o.marsCfg = cfg }
}

func WithValidationConfig(cfg ValidationConfig) Option {
	return func(o *options) { o.validation = cfg }
}

// WithLogger overrides the context logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewOrchestrator builds an orchestrator around a loaded market-sizing table.
func NewOrchestrator(table *tam.Table, opts ...Option) *Orchestrator {
	o := options{
		earthCfg: earth.DefaultConfig(),
		marsCfg:  mars.DefaultConfig(),
		validation: ValidationConfig{
			EnableStrictValidation: false,
			CashFlowTolerance:      1e-6,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Orchestrator{
		earth:            earth.New(table, o.earthCfg),
		mars:             mars.New(o.marsCfg),
		repo:             o.repo,
		validationConfig: o.validation,
		logger:           o.logger,
	}
}

// Detail is a full deterministic valuation with the model internals.
type Detail struct {
	Inputs    scenario.ScenarioInputs `json:"inputs"`
	Earth     earth.Valuation         `json:"earth"`
	Mars      mars.Valuation          `json:"mars"`
	Valuation models.ValuationResult  `json:"valuation"`
}

// =============================================================================
// DETERMINISTIC VALUATION
// =============================================================================

// CalculateEarthValuation returns the Earth equity value in billions USD.
func (p *Orchestrator) CalculateEarthValuation(in scenario.ScenarioInputs) (float64, error) {
	v, err := p.valueEarth(in)
	if err != nil {
		return 0, err
	}
	return toBillions(v.Value), nil
}

// CalculateMarsValuation returns the Mars option value in billions USD.
func (p *Orchestrator) CalculateMarsValuation(in scenario.ScenarioInputs) (float64, error) {
	v, err := p.valueMars(in)
	if err != nil {
		return 0, err
	}
	return toBillions(v.Value), nil
}

// CalculateTotalEnterpriseValue combines both segments. The total is
// carried to horizon-year dollars:
//
//	total = (EarthWeight*earth + MarsWeight*mars) * (1+r)^N
func (p *Orchestrator) CalculateTotalEnterpriseValue(in scenario.ScenarioInputs) (models.ValuationResult, error) {
	d, err := p.Value(in)
	if err != nil {
		return models.ValuationResult{}, err
	}
	return d.Valuation, nil
}

// Value runs both models and keeps their projections.
func (p *Orchestrator) Value(in scenario.ScenarioInputs) (*Detail, error) {
	ev, err := p.valueEarth(in)
	if err != nil {
		return nil, err
	}
	mv, err := p.valueMars(in)
	if err != nil {
		return nil, err
	}
	e, m := toBillions(ev.Value), toBillions(mv.Value)
	total, err := valuation.FutureValue(EarthWeight*e+MarsWeight*m, in.Financial.DiscountRate, in.Financial.ProjectionYears)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Inputs:    in,
		Earth:     ev,
		Mars:      mv,
		Valuation: models.ValuationResult{Earth: e, Mars: m, Total: total},
	}, nil
}

// Evaluate values one scenario for the simulator.
func (p *Orchestrator) Evaluate(ctx context.Context, in scenario.ScenarioInputs) (models.ValuationResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ValuationResult{}, err
	}
	return p.CalculateTotalEnterpriseValue(in)
}

func (p *Orchestrator) valueEarth(in scenario.ScenarioInputs) (earth.Valuation, error) {
	v, err := p.earth.Value(in)
	if err != nil {
		return earth.Valuation{}, fmt.Errorf("earth valuation: %w", err)
	}
	if err := p.checkProjection("earth", v.Projections); err != nil {
		return earth.Valuation{}, err
	}
	return v, nil
}

func (p *Orchestrator) valueMars(in scenario.ScenarioInputs) (mars.Valuation, error) {
	v, err := p.mars.Value(in)
	if err != nil {
		return mars.Valuation{}, fmt.Errorf("mars valuation: %w", err)
	}
	if err := p.checkProjection("mars", v.Projections); err != nil {
		return mars.Valuation{}, err
	}
	return v, nil
}

func (p *Orchestrator) checkProjection(model string, s projection.Series) error {
	failed := validate.CheckCashFlows(s, p.validationConfig.CashFlowTolerance)
	if len(failed) == 0 {
		return nil
	}
	first := failed[0]
	err := fmt.Errorf("%s projection %d: cash flow %.4f does not equal revenue - cost %.4f",
		model, first.Year, first.Reported, first.Computed)
	if p.validationConfig.EnableStrictValidation {
		return err
	}
	p.log(context.Background()).Warn("projection mismatch",
		slog.String("model", model),
		slog.Int("years", len(failed)),
		slog.String("first", err.Error()))
	return nil
}

// =============================================================================
// RUNS AND SIMULATION
// =============================================================================

// Run values one segment or the total and persists the result when a
// repository is configured.
func (p *Orchestrator) Run(ctx context.Context, kind Kind, in scenario.ScenarioInputs) (models.ValuationResult, error) {
	start := time.Now()
	var res models.ValuationResult
	var err error
	switch kind {
	case KindEarth:
		res.Earth, err = p.CalculateEarthValuation(in)
		res.Total = res.Earth
	case KindMars:
		res.Mars, err = p.CalculateMarsValuation(in)
		res.Total = res.Mars
	case KindTotal:
		res, err = p.CalculateTotalEnterpriseValue(in)
	default:
		return models.ValuationResult{}, fmt.Errorf("unknown run kind %q", kind)
	}
	logger := p.log(ctx)
	if err != nil {
		logging.LogError(logger, "valuation failed", err, slog.String("kind", string(kind)))
		return models.ValuationResult{}, err
	}
	logging.LogOperation(logger, "valuation",
		slog.String("kind", string(kind)),
		slog.Float64("earth_b", res.Earth),
		slog.Float64("mars_b", res.Mars),
		slog.Float64("total_b", res.Total),
		logging.Since(start))

	if err := p.save(ctx, &models.Run{Kind: string(kind), Scenario: in, Result: res}); err != nil {
		return models.ValuationResult{}, err
	}
	return res, nil
}

// Simulate runs the Monte Carlo simulation around in. The returned total is
// the simulated mean with its bear/base/optimistic breakdown; Earth and Mars
// are the simulated segment means.
func (p *Orchestrator) Simulate(ctx context.Context, in scenario.ScenarioInputs, set assumption.Set, cfg montecarlo.Config) (models.ValuationResult, *montecarlo.Summary, error) {
	if p.logger != nil {
		ctx = logging.WithLogger(ctx, p.logger)
	}
	summary, err := montecarlo.New(p, set, cfg).Run(ctx, in)
	if err != nil {
		return models.ValuationResult{}, nil, err
	}
	res := models.ValuationResult{
		Earth:     summary.Earth,
		Mars:      summary.Mars,
		Total:     summary.Base,
		Breakdown: summary.Breakdown(),
	}
	seed := summary.Seed
	run := &models.Run{
		Kind:     string(KindSimulate),
		Scenario: in,
		Result:   res,
		Samples:  summary.Requested,
		Seed:     &seed,
	}
	if err := p.save(ctx, run); err != nil {
		return models.ValuationResult{}, nil, err
	}
	return res, summary, nil
}

// Compare checks a result against a baseline within a relative tolerance.
func (p *Orchestrator) Compare(got, baseline models.ValuationResult, tolerance float64) *validate.BaselineReport {
	return validate.CompareBaseline(got, baseline, tolerance)
}

func (p *Orchestrator) save(ctx context.Context, run *models.Run) error {
	if p.repo == nil {
		return nil
	}
	if err := p.repo.Save(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	p.log(ctx).Info("run saved", slog.String("run_id", run.ID), slog.String("kind", run.Kind))
	return nil
}

func (p *Orchestrator) log(ctx context.Context) *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return logging.FromContext(ctx)
}

func toBillions(millions float64) float64 {
	return millions / 1000
}
