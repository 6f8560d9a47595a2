package scenario

import (
	"fmt"
	"os"
	"strings"

	"aerospace_valuation/pkg/core/valerr"

	"gopkg.in/yaml.v2"
)

// LoadFile reads a YAML scenario file. See Parse.
func LoadFile(path string) (ScenarioInputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScenarioInputs{}, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML scenario. Every input must be present: a missing key
// is reported as an InvalidInput naming it rather than defaulted to zero.
func Parse(data []byte) (ScenarioInputs, error) {
	var raw map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ScenarioInputs{}, fmt.Errorf("parse scenario yaml: %w", err)
	}

	required := append(Fields(), boolFields...)
	for _, name := range required {
		group, key, _ := strings.Cut(name, ".")
		values, ok := raw[group]
		if !ok {
			return ScenarioInputs{}, valerr.Invalid(name, nil, "missing")
		}
		v, ok := values[key]
		if !ok || v == nil {
			return ScenarioInputs{}, valerr.Invalid(name, nil, "missing")
		}
	}

	var s ScenarioInputs
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return ScenarioInputs{}, fmt.Errorf("%w: %v", valerr.ErrInvalidInput, err)
	}
	if err := s.Validate(); err != nil {
		return ScenarioInputs{}, err
	}
	return s, nil
}

// Marshal renders s as YAML in the layout Parse accepts.
func Marshal(s ScenarioInputs) ([]byte, error) {
	return yaml.Marshal(s)
}
