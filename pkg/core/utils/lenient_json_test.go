package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string    `json:"name"`
	Rows []float64 `json:"rows"`
}

func TestDecodeLenient(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"standard json", `{"name": "tam", "rows": [1, 2, 3]}`},
		{"trailing comma", `{"name": "tam", "rows": [1, 2, 3,],}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			require.NoError(t, DecodeLenient([]byte(tt.input), &got))
			assert.Equal(t, "tam", got.Name)
			assert.Equal(t, []float64{1, 2, 3}, got.Rows)
		})
	}
}

func TestHJSONToJSON(t *testing.T) {
	out, err := HJSONToJSON([]byte("{\n  # market sizing\n  name: tam\n  rows: [1, 2, 3]\n}"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "tam", "rows": [1, 2, 3]}`, string(out))
}
