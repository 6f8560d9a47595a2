package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"aerospace_valuation/pkg/core/assumption"
	"aerospace_valuation/pkg/core/logging"
	"aerospace_valuation/pkg/core/montecarlo"
	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/store"
	"aerospace_valuation/pkg/core/tam"
	"aerospace_valuation/pkg/core/valerr"
	"aerospace_valuation/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func newOrchestrator(t *testing.T, opts ...Option) *Orchestrator {
	t.Helper()
	table, err := tam.LoadFrom(context.Background(), tam.DefaultProvider())
	require.NoError(t, err)
	return NewOrchestrator(table, opts...)
}

func with(t *testing.T, s scenario.ScenarioInputs, field string, v float64) scenario.ScenarioInputs {
	t.Helper()
	out, err := s.With(field, v)
	require.NoError(t, err)
	return out
}

type MockRepository struct {
	SaveFunc func(ctx context.Context, run *models.Run) error
	saved    []models.Run
}

func (m *MockRepository) Save(ctx context.Context, run *models.Run) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, run)
	}
	store.Prepare(run)
	m.saved = append(m.saved, *run)
	return nil
}

func (m *MockRepository) Load(ctx context.Context, id string) (*models.Run, error) {
	for _, r := range m.saved {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockRepository) List(ctx context.Context, limit int) ([]models.Run, error) {
	return m.saved, nil
}

// --- Deterministic valuation ---

func TestCalculateEarthValuation(t *testing.T) {
	p := newOrchestrator(t)
	v, err := p.CalculateEarthValuation(scenario.BaseCase())
	require.NoError(t, err)
	assert.InEpsilon(t, 124.48, v, 0.05)
}

func TestCalculateMarsValuation(t *testing.T) {
	p := newOrchestrator(t)

	v, err := p.CalculateMarsValuation(scenario.BaseCase())
	require.NoError(t, err)
	assert.InEpsilon(t, 0.745, v, 0.05)

	noIndustry := scenario.BaseCase()
	noIndustry.Mars.IndustrialBootstrap = false
	lower, err := p.CalculateMarsValuation(noIndustry)
	require.NoError(t, err)
	assert.Less(t, lower, v)
	assert.GreaterOrEqual(t, lower, 0.0)
}

func TestCalculateTotalEnterpriseValue(t *testing.T) {
	p := newOrchestrator(t)
	in := scenario.BaseCase()

	res, err := p.CalculateTotalEnterpriseValue(in)
	require.NoError(t, err)

	e, err := p.CalculateEarthValuation(in)
	require.NoError(t, err)
	m, err := p.CalculateMarsValuation(in)
	require.NoError(t, err)

	assert.Equal(t, e, res.Earth)
	assert.Equal(t, m, res.Mars)
	horizon := math.Pow(1+in.Financial.DiscountRate, float64(in.Financial.ProjectionYears))
	assert.InDelta(t, (e+m)*horizon, res.Total, 1e-6)
	assert.InEpsilon(t, 2400.6, res.Total, 0.05)
	assert.Nil(t, res.Breakdown)
}

func TestValuationsAreNeverNegative(t *testing.T) {
	p := newOrchestrator(t)
	cases := []struct {
		name  string
		field string
		value float64
	}{
		{"no broadband", "earth.starlink_penetration", 0},
		{"expensive fleet", "earth.satellite_opex", 10},
		{"idle colony", "mars.output_per_worker", 0},
		{"punitive hurdle", "financial.mars_hurdle_spread", 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := p.CalculateTotalEnterpriseValue(with(t, scenario.BaseCase(), tc.field, tc.value))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.Earth, 0.0)
			assert.GreaterOrEqual(t, res.Mars, 0.0)
			assert.GreaterOrEqual(t, res.Total, 0.0)
		})
	}
}

func TestErrorsPropagate(t *testing.T) {
	p := newOrchestrator(t)

	_, err := p.CalculateTotalEnterpriseValue(with(t, scenario.BaseCase(), "earth.starlink_penetration", 1.5))
	assert.ErrorIs(t, err, valerr.ErrInvalidInput)
	var inputErr *valerr.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "earth.starlink_penetration", inputErr.Field)

	_, err = p.CalculateEarthValuation(with(t, scenario.BaseCase(), "financial.terminal_growth", 0.2))
	assert.ErrorIs(t, err, valerr.ErrDivergentTerminalValue)

	_, err = p.CalculateMarsValuation(with(t, scenario.BaseCase(), "mars.initial_colonists", -1))
	assert.ErrorIs(t, err, valerr.ErrInvalidInput)
}

func TestEvaluateHonoursContext(t *testing.T) {
	p := newOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Evaluate(ctx, scenario.BaseCase())
	assert.ErrorIs(t, err, context.Canceled)
}

// --- Runs and persistence ---

func TestRunPersists(t *testing.T) {
	repo := &MockRepository{}
	var buf bytes.Buffer
	p := newOrchestrator(t, WithRepository(repo), WithLogger(logging.NewLogger(&buf, slog.LevelInfo)))

	res, err := p.Run(context.Background(), KindTotal, scenario.BaseCase())
	require.NoError(t, err)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "total", repo.saved[0].Kind)
	assert.Equal(t, res, repo.saved[0].Result)
	assert.NotEmpty(t, repo.saved[0].ID)
	assert.Contains(t, buf.String(), `"msg":"valuation"`)
	assert.Contains(t, buf.String(), `"msg":"run saved"`)

	earthOnly, err := p.Run(context.Background(), KindEarth, scenario.BaseCase())
	require.NoError(t, err)
	assert.Equal(t, res.Earth, earthOnly.Earth)
	assert.Equal(t, 0.0, earthOnly.Mars)

	_, err = p.Run(context.Background(), Kind("jupiter"), scenario.BaseCase())
	assert.Error(t, err)
}

func TestRunSaveFailure(t *testing.T) {
	repo := &MockRepository{SaveFunc: func(context.Context, *models.Run) error {
		return errors.New("disk full")
	}}
	p := newOrchestrator(t, WithRepository(repo))

	res, err := p.Run(context.Background(), KindMars, scenario.BaseCase())
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, models.ValuationResult{}, res)
}

func TestRunWithoutRepository(t *testing.T) {
	p := newOrchestrator(t)
	res, err := p.Run(context.Background(), KindMars, scenario.BaseCase())
	require.NoError(t, err)
	assert.InEpsilon(t, 0.745, res.Mars, 0.05)
}

func TestCompare(t *testing.T) {
	p := newOrchestrator(t)
	res, err := p.CalculateTotalEnterpriseValue(scenario.BaseCase())
	require.NoError(t, err)

	report := p.Compare(res, models.ValuationResult{Earth: 124.48, Mars: 0.745, Total: 2400.6}, 0.05)
	assert.True(t, report.AllPassed, report.String())
}

// --- Simulation ---

func TestSimulateReferenceDistribution(t *testing.T) {
	if testing.Short() {
		t.Skip("long simulation")
	}
	repo := &MockRepository{}
	p := newOrchestrator(t, WithRepository(repo))
	seed := uint64(2024)

	res, summary, err := p.Simulate(context.Background(), scenario.BaseCase(), assumption.LegacyBaseCase(),
		montecarlo.Config{Samples: 5000, Workers: 8, Seed: &seed})
	require.NoError(t, err)

	assert.Equal(t, 5000, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.InEpsilon(t, 2509.8, res.Total, 0.05)
	require.NotNil(t, res.Breakdown)
	assert.InEpsilon(t, 1710.5, res.Breakdown.Bear, 0.10)
	assert.InEpsilon(t, 3112.6, res.Breakdown.Optimistic, 0.10)
	assert.Less(t, res.Breakdown.Bear, res.Breakdown.Base)
	assert.Less(t, res.Breakdown.Base, res.Breakdown.Optimistic)
	assert.Equal(t, res.Breakdown.Base, res.Total)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, "simulate", repo.saved[0].Kind)
	assert.Equal(t, 5000, repo.saved[0].Samples)
	require.NotNil(t, repo.saved[0].Seed)
	assert.Equal(t, seed, *repo.saved[0].Seed)
}

func TestSimulateIsReproducible(t *testing.T) {
	p := newOrchestrator(t)
	seed := uint64(7)

	_, a, err := p.Simulate(context.Background(), scenario.BaseCase(), assumption.LegacyBaseCase(),
		montecarlo.Config{Samples: 300, Workers: 1, Seed: &seed})
	require.NoError(t, err)
	_, b, err := p.Simulate(context.Background(), scenario.BaseCase(), assumption.LegacyBaseCase(),
		montecarlo.Config{Samples: 300, Workers: 6, Seed: &seed})
	require.NoError(t, err)

	assert.Equal(t, a.Totals, b.Totals)
	assert.Equal(t, a.Base, b.Base)
}

func TestSimulateFailureThreshold(t *testing.T) {
	p := newOrchestrator(t)
	seed := uint64(11)
	// discount rates at or below terminal growth diverge
	set := assumption.Set{
		Name: "divergent",
		Distributions: []assumption.Distribution{
			{Field: "financial.discount_rate", Type: assumption.DistUniform, Min: 0.01, Max: 0.04},
		},
	}

	_, _, err := p.Simulate(context.Background(), scenario.BaseCase(), set,
		montecarlo.Config{Samples: 200, Seed: &seed})
	assert.ErrorIs(t, err, valerr.ErrAggregateSimulationFailure)
	assert.ErrorIs(t, err, valerr.ErrDivergentTerminalValue)
}
