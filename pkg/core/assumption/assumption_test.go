package assumption

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/valerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyBaseCaseIsValid(t *testing.T) {
	set := LegacyBaseCase()
	require.NoError(t, set.Validate())
	assert.Equal(t, []string{
		"earth.starlink_penetration",
		"earth.bandwidth_price_decline",
		"mars.population_growth",
	}, set.Fields())
}

func TestDistributionValidate(t *testing.T) {
	cases := []struct {
		name string
		d    Distribution
	}{
		{"unknown field", Distribution{Field: "earth.nope", Type: DistUniform, Min: 0, Max: 1}},
		{"unknown type", Distribution{Field: "earth.tax_rate", Type: "beta", Min: 0, Max: 1}},
		{"normal without std", Distribution{Field: "earth.tax_rate", Type: DistNormal, Mean: 0.2}},
		{"uniform empty range", Distribution{Field: "earth.tax_rate", Type: DistUniform, Min: 0.3, Max: 0.3}},
		{"triangle mode outside", Distribution{Field: "earth.tax_rate", Type: DistTriangular, Min: 0.1, Max: 0.3, Mode: 0.4}},
		{"lognormal inverted clamp", Distribution{Field: "earth.tax_rate", Type: DistLognormal, Std: 0.1, Min: 1, Max: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.d.Validate(), valerr.ErrInvalidInput)
		})
	}
}

func TestDrawStaysInSupport(t *testing.T) {
	src := rand.NewPCG(1, 2)
	for _, d := range LegacyBaseCase().Distributions {
		for i := 0; i < 2000; i++ {
			v := d.Draw(src)
			assert.GreaterOrEqual(t, v, d.Min, d.Field)
			assert.LessOrEqual(t, v, d.Max, d.Field)
		}
	}
}

func TestDrawLognormalIsPositive(t *testing.T) {
	d := Distribution{Field: "mars.output_per_worker", Type: DistLognormal, Mean: -2, Std: 0.3}
	require.NoError(t, d.Validate())
	src := rand.NewPCG(7, 7)
	for i := 0; i < 500; i++ {
		assert.Greater(t, d.Draw(src), 0.0)
	}
}

func TestSampleIsReproducible(t *testing.T) {
	set := LegacyBaseCase()
	base := scenario.BaseCase()

	a, err := set.Sample(rand.NewPCG(42, 3), base)
	require.NoError(t, err)
	b, err := set.Sample(rand.NewPCG(42, 3), base)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// untouched fields keep their base values
	assert.Equal(t, base.Earth.TaxRate, a.Earth.TaxRate)
	assert.Equal(t, base.Financial, a.Financial)
	assert.NotEqual(t, base.Earth.StarlinkPenetration, a.Earth.StarlinkPenetration)
}

func TestSampleUnknownFieldReturnsBase(t *testing.T) {
	set := Set{Distributions: []Distribution{{Field: "nope", Type: DistUniform, Min: 0, Max: 1}}}
	base := scenario.BaseCase()

	out, err := set.Sample(rand.NewPCG(1, 1), base)
	assert.ErrorIs(t, err, valerr.ErrInvalidInput)
	assert.Equal(t, base, out)
}

func TestSetRejectsDuplicates(t *testing.T) {
	d := Distribution{Field: "earth.tax_rate", Type: DistUniform, Min: 0.1, Max: 0.3}
	err := Set{Distributions: []Distribution{d, d}}.Validate()
	assert.ErrorIs(t, err, valerr.ErrInvalidInput)
}

func TestLoadSet(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`name: narrow
distributions:
  - field: financial.discount_rate
    type: uniform
    min: 0.10
    max: 0.14
`), 0o644))
	set, err := LoadSet(good)
	require.NoError(t, err)
	assert.Equal(t, "narrow", set.Name)
	require.Len(t, set.Distributions, 1)
	assert.Equal(t, DistUniform, set.Distributions[0].Type)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`name: x
distributions:
  - field: financial.discount_rate
    type: uniform
    spread: 2
`), 0o644))
	_, err = LoadSet(bad)
	assert.ErrorIs(t, err, valerr.ErrInvalidInput)

	_, err = LoadSet(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
