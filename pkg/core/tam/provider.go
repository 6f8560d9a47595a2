package tam

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aerospace_valuation/pkg/core/utils"
	"aerospace_valuation/pkg/core/valerr"

	"gopkg.in/yaml.v2"
)

//go:embed data/market_sizing.json
var defaultDataset []byte

// Provider supplies raw market-sizing rows. The valuation engine never
// fetches or parses datasets itself.
type Provider interface {
	Rows(ctx context.Context) ([]Row, error)
}

// LoadFrom fetches rows from p and builds a Table.
func LoadFrom(ctx context.Context, p Provider) (*Table, error) {
	rows, err := p.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load market sizing rows: %w", err)
	}
	return Load(rows)
}

// StaticProvider serves rows held in memory.
type StaticProvider []Row

func (s StaticProvider) Rows(ctx context.Context) ([]Row, error) {
	out := make([]Row, len(s))
	copy(out, s)
	return out, nil
}

// FileProvider reads a dataset file: .hjson through the Hjson converter,
// .yaml/.yml through yaml.v2, anything else through the lenient JSON decoder.
type FileProvider struct {
	Path string
}

func (f FileProvider) Rows(ctx context.Context) ([]Row, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", f.Path, err)
	}
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".hjson":
		converted, err := utils.HJSONToJSON(data)
		if err != nil {
			return nil, err
		}
		return decodeJSON(converted)
	default:
		return decodeJSON(data)
	}
}

// DefaultProvider serves the embedded broadband demand-absorption curve.
func DefaultProvider() Provider {
	return bytesProvider(defaultDataset)
}

type bytesProvider []byte

func (b bytesProvider) Rows(ctx context.Context) ([]Row, error) {
	return decodeJSON(b)
}

// dataset mirrors the file layout; pointer fields expose nulls.
type dataset struct {
	Name string    `json:"name" yaml:"name"`
	Unit string    `json:"unit" yaml:"unit"`
	Rows []*rawRow `json:"rows" yaml:"rows"`
}

type rawRow struct {
	Key   *float64 `json:"capacity" yaml:"capacity"`
	Value *float64 `json:"multiplier" yaml:"multiplier"`
}

func decodeJSON(data []byte) ([]Row, error) {
	var ds dataset
	if err := utils.DecodeLenient(data, &ds); err != nil {
		return nil, err
	}
	return ds.rows()
}

func decodeYAML(data []byte) ([]Row, error) {
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset yaml: %w", err)
	}
	return ds.rows()
}

func (ds dataset) rows() ([]Row, error) {
	out := make([]Row, 0, len(ds.Rows))
	for i, r := range ds.Rows {
		if r == nil || r.Key == nil || r.Value == nil {
			return nil, valerr.Invalid(fmt.Sprintf("tam.rows[%d]", i), nil, "null entry")
		}
		out = append(out, Row{Key: *r.Key, Value: *r.Value})
	}
	return out, nil
}
