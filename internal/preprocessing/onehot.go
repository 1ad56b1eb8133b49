package preprocessing

import (
	"fmt"
	"sort"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
)

// OneHotEncoder replaces each categorical column with boolean indicator
// columns named <column>_<category>, one per sorted category. With DropFirst
// the first category is the reference and gets no indicator.
type OneHotEncoder struct {
	Columns    []string            `msgpack:"columns"`
	DropFirst  bool                `msgpack:"drop_first"`
	Categories map[string][]string `msgpack:"categories"`
}

func NewOneHotEncoder(dropFirst bool, columns ...string) *OneHotEncoder {
	return &OneHotEncoder{Columns: columns, DropFirst: dropFirst}
}

func IndicatorName(column, category string) string {
	return column + "_" + category
}

func (e *OneHotEncoder) Fit(ds *data.Dataset) error {
	e.Categories = make(map[string][]string, len(e.Columns))
	for _, column := range e.Columns {
		values, missing, err := ds.Strings(column)
		if err != nil {
			return err
		}
		seen := make(map[string]bool)
		var categories []string
		for i, v := range values {
			if missing[i] || seen[v] {
				continue
			}
			seen[v] = true
			categories = append(categories, v)
		}
		if len(categories) == 0 {
			return data.NewNoObservationsError("one-hot", column)
		}
		sort.Strings(categories)
		e.Categories[column] = categories
	}
	return nil
}

func (e *OneHotEncoder) encoded(column string) []string {
	categories := e.Categories[column]
	if e.DropFirst && len(categories) > 0 {
		return categories[1:]
	}
	return categories
}

// OutputColumns lists the indicator columns produced for column.
func (e *OneHotEncoder) OutputColumns(column string) []string {
	categories := e.encoded(column)
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = IndicatorName(column, c)
	}
	return out
}

// Transform drops every encoded column and appends its indicators. Missing
// entries get all indicators false.
func (e *OneHotEncoder) Transform(ds *data.Dataset) (*data.Dataset, error) {
	if e.Categories == nil {
		return nil, fmt.Errorf("one-hot encoder: %w", ErrNotFitted)
	}

	out := ds
	for _, column := range e.Columns {
		categories, ok := e.Categories[column]
		if !ok {
			return nil, fmt.Errorf("one-hot encoder for %s: %w", column, ErrNotFitted)
		}
		values, missing, err := out.Strings(column)
		if err != nil {
			return nil, err
		}

		known := make(map[string]bool, len(categories))
		for _, c := range categories {
			known[c] = true
		}
		for i, v := range values {
			if !missing[i] && !known[v] {
				return nil, fmt.Errorf("%s=%q at row %d: %w", column, v, i, ErrUnknownCategory)
			}
		}

		if out, err = out.Drop(column); err != nil {
			return nil, err
		}
		for _, category := range e.encoded(column) {
			indicator := make([]bool, len(values))
			for i, v := range values {
				indicator[i] = !missing[i] && v == category
			}
			if out, err = out.WithBools(IndicatorName(column, category), indicator); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (e *OneHotEncoder) FitTransform(ds *data.Dataset) (*data.Dataset, error) {
	if err := e.Fit(ds); err != nil {
		return nil, err
	}
	return e.Transform(ds)
}

// Decode recovers the category of each row from the indicator columns of an
// encoded dataset. Rows with no indicator set decode to the reference
// category when DropFirst is on and are reported missing otherwise.
func (e *OneHotEncoder) Decode(ds *data.Dataset, column string) ([]string, []bool, error) {
	categories, ok := e.Categories[column]
	if !ok {
		return nil, nil, fmt.Errorf("one-hot encoder for %s: %w", column, ErrNotFitted)
	}

	n := ds.Len()
	values := make([]string, n)
	missing := make([]bool, n)
	decoded := make([]bool, n)

	for _, category := range e.encoded(column) {
		flags, err := ds.Floats(IndicatorName(column, category))
		if err != nil {
			return nil, nil, err
		}
		for i, f := range flags {
			if f == 1 {
				if decoded[i] {
					return nil, nil, fmt.Errorf("row %d has more than one %s indicator set", i, column)
				}
				values[i] = category
				decoded[i] = true
			}
		}
	}

	for i := range values {
		if decoded[i] {
			continue
		}
		if e.DropFirst {
			values[i] = categories[0]
			continue
		}
		missing[i] = true
	}
	return values, missing, nil
}
