package scenario

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aerospace_valuation/pkg/core/valerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseCaseIsValid(t *testing.T) {
	base := BaseCase()
	require.NoError(t, base.Validate())

	assert.Equal(t, 0.12, base.Financial.DiscountRate)
	assert.Equal(t, 0.15, base.Earth.StarlinkPenetration)
	assert.Equal(t, 150.0, base.Earth.LaunchVolume)
	assert.Equal(t, 2030, base.Mars.FirstColonyYear)
	assert.Equal(t, 0.03, base.Financial.TerminalGrowth)
	assert.Equal(t, 0.15, base.Financial.DilutionFactor)
	assert.Equal(t, 2050, base.HorizonYear())
}

func TestValidateNamesOffendingField(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value float64
	}{
		{"penetration above one", "earth.starlink_penetration", 1.2},
		{"negative penetration", "earth.starlink_penetration", -0.1},
		{"negative launch volume", "earth.launch_volume", -5},
		{"learning rate of one", "earth.launch_learning_rate", 1},
		{"zero discount rate", "financial.discount_rate", 0},
		{"dilution of one", "financial.dilution_factor", 1},
		{"zero horizon", "financial.projection_years", 0},
		{"nan growth", "mars.population_growth", math.NaN()},
		{"infinite spend", "mars.program_spend", math.Inf(1)},
		{"colony year out of range", "mars.first_colony_year", 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := BaseCase().With(tt.field, tt.value)
			require.NoError(t, err)

			err = s.Validate()
			require.ErrorIs(t, err, valerr.ErrInvalidInput)

			var inputErr *valerr.InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestDivergentRatesAreNotAnInputError(t *testing.T) {
	s, err := BaseCase().With("financial.discount_rate", 0.03)
	require.NoError(t, err)
	assert.NoError(t, s.Validate())
}

func TestWithReturnsCopy(t *testing.T) {
	base := BaseCase()
	changed, err := base.With("earth.starlink_penetration", 0.4)
	require.NoError(t, err)

	assert.Equal(t, 0.15, base.Earth.StarlinkPenetration)
	assert.Equal(t, 0.4, changed.Earth.StarlinkPenetration)

	got, err := changed.Get("earth.starlink_penetration")
	require.NoError(t, err)
	assert.Equal(t, 0.4, got)
}

func TestWithRoundsIntegerFields(t *testing.T) {
	s, err := BaseCase().With("mars.first_colony_year", 2032.6)
	require.NoError(t, err)
	assert.Equal(t, 2033, s.Mars.FirstColonyYear)
}

func TestUnknownField(t *testing.T) {
	_, err := BaseCase().With("earth.warp_drive", 1)
	assert.ErrorIs(t, err, valerr.ErrInvalidInput)

	_, err = BaseCase().Get("nope")
	assert.ErrorIs(t, err, valerr.ErrInvalidInput)
}

func TestFieldsCoverEveryNumericInput(t *testing.T) {
	fields := Fields()
	assert.Len(t, fields, 32)
	for _, name := range fields {
		_, err := BaseCase().Get(name)
		assert.NoError(t, err, name)
	}
}

func TestParseRoundTrip(t *testing.T) {
	data, err := Marshal(BaseCase())
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, BaseCase(), got)
}

func TestParseReportsMissingKey(t *testing.T) {
	data, err := Marshal(BaseCase())
	require.NoError(t, err)

	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, "terminal_growth:") {
			continue
		}
		kept = append(kept, line)
	}

	_, err = Parse([]byte(strings.Join(kept, "\n")))
	var inputErr *valerr.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "financial.terminal_growth", inputErr.Field)
	assert.Equal(t, "missing", inputErr.Reason)
}

func TestParseRejectsUnknownKey(t *testing.T) {
	data, err := Marshal(BaseCase())
	require.NoError(t, err)
	data = append(data, []byte("extra:\n  foo: 1\n")...)

	_, err = Parse(data)
	assert.ErrorIs(t, err, valerr.ErrInvalidInput)
}

func TestLoadFile(t *testing.T) {
	data, err := Marshal(BaseCase())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "base.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, BaseCase(), got)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
