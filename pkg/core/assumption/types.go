// Package assumption describes the uncertain inputs of a scenario as
// probability distributions and samples them for Monte Carlo simulation.
package assumption

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/valerr"

	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v2"
)

// =============================================================================
// DISTRIBUTIONS
// =============================================================================

// DistributionType for Monte Carlo simulation
type DistributionType string

const (
	DistNormal     DistributionType = "normal"
	DistTriangular DistributionType = "triangular"
	DistUniform    DistributionType = "uniform"
	DistLognormal  DistributionType = "lognormal"
)

// Distribution binds one scenario field to a distribution.
//
//	normal      Mean, Std
//	lognormal   Mean, Std of the underlying normal (log space)
//	uniform     Min, Max
//	triangular  Min, Max, Mode
//
// For normal and lognormal a non-empty [Min, Max] clamps every draw.
type Distribution struct {
	Field string           `json:"field" yaml:"field"`
	Type  DistributionType `json:"type" yaml:"type"`
	Mean  float64          `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std   float64          `json:"std,omitempty" yaml:"std,omitempty"`
	Min   float64          `json:"min,omitempty" yaml:"min,omitempty"`
	Max   float64          `json:"max,omitempty" yaml:"max,omitempty"`
	Mode  float64          `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// Validate checks the field name and the parameters for the type.
func (d Distribution) Validate() error {
	name := "distribution." + d.Field
	if _, err := scenario.BaseCase().Get(d.Field); err != nil {
		return err
	}
	for _, v := range []float64{d.Mean, d.Std, d.Min, d.Max, d.Mode} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return valerr.Invalid(name, v, "parameters must be finite")
		}
	}
	switch d.Type {
	case DistNormal, DistLognormal:
		if d.Std <= 0 {
			return valerr.Invalid(name, d.Std, "std must be positive")
		}
		if d.Min > d.Max {
			return valerr.Invalid(name, d.Min, "min must not exceed max")
		}
	case DistUniform:
		if d.Min >= d.Max {
			return valerr.Invalid(name, d.Min, "min must be below max")
		}
	case DistTriangular:
		if d.Min >= d.Max || d.Mode < d.Min || d.Mode > d.Max {
			return valerr.Invalid(name, d.Mode, "need min < max and min <= mode <= max")
		}
	default:
		return valerr.Invalid(name, d.Type, "unknown distribution type")
	}
	return nil
}

// Draw samples one value from src. d must be valid.
func (d Distribution) Draw(src rand.Source) float64 {
	var v float64
	switch d.Type {
	case DistNormal:
		v = distuv.Normal{Mu: d.Mean, Sigma: d.Std, Src: src}.Rand()
	case DistLognormal:
		v = distuv.LogNormal{Mu: d.Mean, Sigma: d.Std, Src: src}.Rand()
	case DistUniform:
		return distuv.Uniform{Min: d.Min, Max: d.Max, Src: src}.Rand()
	case DistTriangular:
		return distuv.NewTriangle(d.Min, d.Max, d.Mode, src).Rand()
	}
	if d.Min < d.Max {
		v = math.Min(d.Max, math.Max(d.Min, v))
	}
	return v
}

// =============================================================================
// DISTRIBUTION SET
// =============================================================================

// Set is a named collection of distributions applied together.
type Set struct {
	Name          string         `json:"name" yaml:"name"`
	Distributions []Distribution `json:"distributions" yaml:"distributions"`
}

// Validate rejects invalid members and fields listed twice.
func (s Set) Validate() error {
	seen := make(map[string]bool, len(s.Distributions))
	for _, d := range s.Distributions {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Field] {
			return valerr.Invalid("distribution."+d.Field, d.Field, "listed twice")
		}
		seen[d.Field] = true
	}
	return nil
}

// Sample draws every distribution in order and applies the draws to base.
// The result is not validated; callers treat invalid draws as failed samples.
func (s Set) Sample(src rand.Source, base scenario.ScenarioInputs) (scenario.ScenarioInputs, error) {
	out := base
	for _, d := range s.Distributions {
		var err error
		out, err = out.With(d.Field, d.Draw(src))
		if err != nil {
			return base, err
		}
	}
	return out, nil
}

// Fields lists the sampled field names.
func (s Set) Fields() []string {
	names := make([]string, len(s.Distributions))
	for i, d := range s.Distributions {
		names[i] = d.Field
	}
	return names
}

// LegacyBaseCase is the distribution set behind the reference simulation:
// penetration skewed toward the upside, a narrow band on bandwidth price
// erosion, and colony growth centred on the base case.
func LegacyBaseCase() Set {
	return Set{
		Name: "legacy-base-case",
		Distributions: []Distribution{
			{Field: "earth.starlink_penetration", Type: DistTriangular, Min: 0.05, Max: 0.22, Mode: 0.17},
			{Field: "earth.bandwidth_price_decline", Type: DistUniform, Min: 0.07, Max: 0.09},
			{Field: "mars.population_growth", Type: DistNormal, Mean: 0.30, Std: 0.07, Min: 0.10, Max: 0.50},
		},
	}
}

// LoadSet reads a YAML distribution set.
func LoadSet(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read distributions %s: %w", path, err)
	}
	var s Set
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return Set{}, fmt.Errorf("%w: parse distributions: %v", valerr.ErrInvalidInput, err)
	}
	if err := s.Validate(); err != nil {
		return Set{}, err
	}
	return s, nil
}
