package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
)

// Median returns the median of the non-NaN values. For an even count it is
// the mean of the two middle values. ok is false when nothing was observed.
func Median(values []float64) (median float64, ok bool) {
	observed := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			observed = append(observed, v)
		}
	}
	if len(observed) == 0 {
		return 0, false
	}

	sort.Float64s(observed)
	mid := len(observed) / 2
	if len(observed)%2 == 1 {
		return observed[mid], true
	}
	return (observed[mid-1] + observed[mid]) / 2, true
}

// Mode returns the most frequent non-missing value. Ties go to the smallest
// value in byte order.
func Mode(values []string, missing []bool) (mode string, ok bool) {
	counts := make(map[string]int)
	for i, v := range values {
		if !missing[i] {
			counts[v]++
		}
	}

	best := 0
	for v, n := range counts {
		if n > best || (n == best && v < mode) {
			mode, best = v, n
		}
	}
	return mode, best > 0
}

// MedianImputer fills the missing entries of one numeric column with the
// median observed at fit time.
type MedianImputer struct {
	Column   string  `msgpack:"column"`
	Value    float64 `msgpack:"value"`
	IsFitted bool    `msgpack:"fitted"`
}

func NewMedianImputer(column string) *MedianImputer {
	return &MedianImputer{Column: column}
}

func (m *MedianImputer) Fit(ds *data.Dataset) error {
	values, err := ds.Floats(m.Column)
	if err != nil {
		return fmt.Errorf("median of %s: %w", m.Column, err)
	}
	median, ok := Median(values)
	if !ok {
		return data.NewNoObservationsError("median", m.Column)
	}
	m.Value = median
	m.IsFitted = true
	return nil
}

// Transform returns a copy of ds with the column filled and the number of
// entries that were replaced.
func (m *MedianImputer) Transform(ds *data.Dataset) (*data.Dataset, int, error) {
	if !m.IsFitted {
		return nil, 0, ErrNotFitted
	}
	values, err := ds.Floats(m.Column)
	if err != nil {
		return nil, 0, err
	}

	filled := 0
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = m.Value
			filled++
		}
	}
	if filled == 0 {
		return ds, 0, nil
	}

	out, err := ds.WithFloats(m.Column, values)
	if err != nil {
		return nil, 0, err
	}
	return out, filled, nil
}

func (m *MedianImputer) FitTransform(ds *data.Dataset) (*data.Dataset, int, error) {
	if err := m.Fit(ds); err != nil {
		return nil, 0, err
	}
	return m.Transform(ds)
}

// ModeImputer fills the missing entries of one categorical column with its
// most frequent value.
type ModeImputer struct {
	Column   string `msgpack:"column"`
	Value    string `msgpack:"value"`
	IsFitted bool   `msgpack:"fitted"`
}

func NewModeImputer(column string) *ModeImputer {
	return &ModeImputer{Column: column}
}

func (m *ModeImputer) Fit(ds *data.Dataset) error {
	values, missing, err := ds.Strings(m.Column)
	if err != nil {
		return fmt.Errorf("mode of %s: %w", m.Column, err)
	}
	mode, ok := Mode(values, missing)
	if !ok {
		return data.NewNoObservationsError("mode", m.Column)
	}
	m.Value = mode
	m.IsFitted = true
	return nil
}

func (m *ModeImputer) Transform(ds *data.Dataset) (*data.Dataset, int, error) {
	if !m.IsFitted {
		return nil, 0, ErrNotFitted
	}
	kind, err := ds.Kind(m.Column)
	if err != nil {
		return nil, 0, err
	}
	if kind != data.Categorical {
		return nil, 0, &data.ColumnError{Op: "mode", Column: m.Column, Message: "mode imputation needs a categorical column"}
	}

	values, missing, err := ds.Strings(m.Column)
	if err != nil {
		return nil, 0, err
	}

	filled := 0
	for i := range values {
		if missing[i] {
			values[i] = m.Value
			filled++
		}
	}
	if filled == 0 {
		return ds, 0, nil
	}

	out, err := ds.WithStrings(m.Column, values, nil)
	if err != nil {
		return nil, 0, err
	}
	return out, filled, nil
}

func (m *ModeImputer) FitTransform(ds *data.Dataset) (*data.Dataset, int, error) {
	if err := m.Fit(ds); err != nil {
		return nil, 0, err
	}
	return m.Transform(ds)
}
