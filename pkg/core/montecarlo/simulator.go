// Package montecarlo runs the valuation many times over sampled inputs and
// summarises the spread of totals.
package montecarlo

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"aerospace_valuation/pkg/core/assumption"
	"aerospace_valuation/pkg/core/logging"
	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/valerr"
	"aerospace_valuation/pkg/models"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultSamples        = 5000
	DefaultMaxFailureRate = 0.10
)

// Valuer values one set of inputs. Implementations must be safe for
// concurrent use.
type Valuer interface {
	Evaluate(ctx context.Context, in scenario.ScenarioInputs) (models.ValuationResult, error)
}

// ValuerFunc adapts a function to Valuer.
type ValuerFunc func(ctx context.Context, in scenario.ScenarioInputs) (models.ValuationResult, error)

func (f ValuerFunc) Evaluate(ctx context.Context, in scenario.ScenarioInputs) (models.ValuationResult, error) {
	return f(ctx, in)
}

// Config controls a simulation run. Zero values take the defaults.
type Config struct {
	Samples        int
	Workers        int     // defaults to GOMAXPROCS
	Seed           *uint64 // nil draws a fresh seed
	MaxFailureRate float64 // share of samples allowed to fail
}

func DefaultConfig() Config {
	return Config{
		Samples:        DefaultSamples,
		Workers:        runtime.GOMAXPROCS(0),
		MaxFailureRate: DefaultMaxFailureRate,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Samples <= 0 {
		c.Samples = d.Samples
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.MaxFailureRate <= 0 {
		c.MaxFailureRate = d.MaxFailureRate
	}
	return c
}

type Simulator struct {
	valuer Valuer
	set    assumption.Set
	cfg    Config
}

func New(valuer Valuer, set assumption.Set, cfg Config) *Simulator {
	return &Simulator{valuer: valuer, set: set, cfg: cfg.withDefaults()}
}

type sample struct {
	result models.ValuationResult
	err    error
}

// Run draws Samples scenarios around base and values each one. Sample i
// always uses the PCG stream (seed, i), so a fixed seed gives the same
// summary for any worker count. Failed samples are dropped; if more than
// MaxFailureRate of them fail, Run returns a *valerr.SimulationError.
// Cancelling ctx aborts the run and discards partial results.
func (s *Simulator) Run(ctx context.Context, base scenario.ScenarioInputs) (*Summary, error) {
	if err := s.set.Validate(); err != nil {
		return nil, err
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	start := time.Now()
	seed := rand.Uint64()
	if s.cfg.Seed != nil {
		seed = *s.cfg.Seed
	}

	samples := make([]sample, s.cfg.Samples)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range samples {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			samples[i] = s.one(gctx, base, seed, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulation aborted: %w", err)
	}

	results := make([]models.ValuationResult, 0, len(samples))
	var failed int
	var first error
	for _, smp := range samples {
		if smp.err != nil {
			if first == nil {
				first = smp.err
			}
			failed++
			continue
		}
		results = append(results, smp.result)
	}

	rate := float64(failed) / float64(len(samples))
	if len(results) == 0 || rate > s.cfg.MaxFailureRate {
		err := &valerr.SimulationError{
			Failed:    failed,
			Total:     len(samples),
			Threshold: s.cfg.MaxFailureRate,
			Last:      first,
		}
		logging.LogError(logger, "simulation failed", err, slog.String("set", s.set.Name))
		return nil, err
	}
	if failed > 0 {
		logger.Warn("simulation samples failed",
			slog.Int("failed", failed),
			slog.Int("samples", len(samples)),
			slog.String("first_error", first.Error()))
	}

	summary := summarize(results, len(samples), seed)
	logging.LogOperation(logger, "simulation",
		slog.String("set", s.set.Name),
		slog.Int("samples", summary.Requested),
		slog.Int("workers", s.cfg.Workers),
		slog.Uint64("seed", seed),
		slog.Float64("base", summary.Base),
		logging.Since(start))
	return summary, nil
}

func (s *Simulator) one(ctx context.Context, base scenario.ScenarioInputs, seed uint64, i int) sample {
	in, err := s.set.Sample(rand.NewPCG(seed, uint64(i)), base)
	if err != nil {
		return sample{err: err}
	}
	if err := in.Validate(); err != nil {
		return sample{err: fmt.Errorf("sample %d: %w", i, err)}
	}
	res, err := s.valuer.Evaluate(ctx, in)
	if err != nil {
		return sample{err: fmt.Errorf("sample %d: %w", i, err)}
	}
	if err := valerr.CheckFinite("sample total", res.Total); err != nil {
		return sample{err: fmt.Errorf("sample %d: %w", i, err)}
	}
	return sample{result: res}
}
