// Package tam holds the market-sizing lookup table: a sorted
// (price-adjusted capacity -> market-size multiplier) curve queried with
// binary search and linear interpolation.
package tam

import (
	"fmt"
	"math"
	"sort"

	"aerospace_valuation/pkg/core/valerr"
)

// Row is one point of the market-sizing curve.
type Row struct {
	Key   float64 `json:"capacity" yaml:"capacity"`
	Value float64 `json:"multiplier" yaml:"multiplier"`
}

// Table is immutable after Load and safe for concurrent readers.
type Table struct {
	rows []Row
}

// Load validates, sorts and de-duplicates rows. When two rows share a key
// the first one in input order wins.
func Load(rows []Row) (*Table, error) {
	if len(rows) == 0 {
		return nil, valerr.ErrLookupTableEmpty
	}

	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	for i, r := range sorted {
		if !finite(r.Key) || !finite(r.Value) {
			return nil, valerr.Invalid(fmt.Sprintf("tam.rows[%d]", i), r, "key and value must be finite")
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	deduped := sorted[:1]
	for _, r := range sorted[1:] {
		if r.Key == deduped[len(deduped)-1].Key {
			continue
		}
		deduped = append(deduped, r)
	}

	return &Table{rows: deduped}, nil
}

// Lookup interpolates the multiplier at x, clamping to the first/last value
// outside the table's key range.
func (t *Table) Lookup(x float64) (float64, error) {
	if math.IsNaN(x) {
		return 0, &valerr.NumericError{Op: "tam_lookup", Value: x}
	}
	n := len(t.rows)
	if x <= t.rows[0].Key {
		return t.rows[0].Value, nil
	}
	if x >= t.rows[n-1].Key {
		return t.rows[n-1].Value, nil
	}

	// first row with Key >= x; 0 < i < n after the clamps above
	i := sort.Search(n, func(i int) bool { return t.rows[i].Key >= x })
	hi := t.rows[i]
	if hi.Key == x {
		return hi.Value, nil
	}
	lo := t.rows[i-1]
	w := (x - lo.Key) / (hi.Key - lo.Key)
	return lo.Value + w*(hi.Value-lo.Value), nil
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) MinKey() float64 { return t.rows[0].Key }

func (t *Table) MaxKey() float64 { return t.rows[len(t.rows)-1].Key }

// Rows returns a copy of the sorted, de-duplicated rows.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
