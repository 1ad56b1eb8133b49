package preprocessing

import (
	"fmt"
	"sort"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
)

// LabelEncoder maps each distinct string to its position among the sorted
// distinct values seen by Fit.
type LabelEncoder struct {
	Classes    []string       `msgpack:"classes"`
	ClassToInt map[string]int `msgpack:"-"`
	IsFitted   bool           `msgpack:"fitted"`
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		ClassToInt: make(map[string]int),
	}
}

func (le *LabelEncoder) Fit(labels []string) {
	unique := make(map[string]bool)
	for _, label := range labels {
		unique[label] = true
	}

	le.Classes = make([]string, 0, len(unique))
	for label := range unique {
		le.Classes = append(le.Classes, label)
	}
	sort.Strings(le.Classes)

	le.index()
	le.IsFitted = true
}

func (le *LabelEncoder) index() {
	le.ClassToInt = make(map[string]int, len(le.Classes))
	for i, label := range le.Classes {
		le.ClassToInt[label] = i
	}
}

func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("label encoder: %w", ErrNotFitted)
	}
	if le.ClassToInt == nil {
		le.index()
	}

	result := make([]int, len(labels))
	for i, label := range labels {
		val, ok := le.ClassToInt[label]
		if !ok {
			return nil, fmt.Errorf("unknown label: %s", label)
		}
		result[i] = val
	}

	return result, nil
}

func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	le.Fit(labels)
	return le.Transform(labels)
}

func (le *LabelEncoder) InverseTransform(encoded []int) ([]string, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("label encoder: %w", ErrNotFitted)
	}

	result := make([]string, len(encoded))
	for i, val := range encoded {
		if val < 0 || val >= len(le.Classes) {
			return nil, fmt.Errorf("unknown encoding: %d", val)
		}
		result[i] = le.Classes[val]
	}

	return result, nil
}

// DefaultMissingToken is the category given to missing entries before label
// encoding, so they form their own class.
const DefaultMissingToken = "nan"

// OrdinalEncoder label-encodes several columns of a dataset independently,
// replacing each with an integer column of the same name.
type OrdinalEncoder struct {
	Columns      []string                 `msgpack:"columns"`
	MissingToken string                   `msgpack:"missing_token"`
	Encoders     map[string]*LabelEncoder `msgpack:"encoders"`
}

func NewOrdinalEncoder(columns ...string) *OrdinalEncoder {
	return &OrdinalEncoder{
		Columns:      columns,
		MissingToken: DefaultMissingToken,
		Encoders:     make(map[string]*LabelEncoder),
	}
}

func (oe *OrdinalEncoder) tokens(ds *data.Dataset, column string) ([]string, error) {
	values, missing, err := ds.Strings(column)
	if err != nil {
		return nil, err
	}
	for i := range values {
		if missing[i] {
			values[i] = oe.MissingToken
		}
	}
	return values, nil
}

func (oe *OrdinalEncoder) Fit(ds *data.Dataset) error {
	oe.Encoders = make(map[string]*LabelEncoder, len(oe.Columns))
	for _, column := range oe.Columns {
		values, err := oe.tokens(ds, column)
		if err != nil {
			return err
		}
		le := NewLabelEncoder()
		le.Fit(values)
		oe.Encoders[column] = le
	}
	return nil
}

func (oe *OrdinalEncoder) Transform(ds *data.Dataset) (*data.Dataset, error) {
	out := ds
	for _, column := range oe.Columns {
		le, ok := oe.Encoders[column]
		if !ok {
			return nil, fmt.Errorf("ordinal encoder for %s: %w", column, ErrNotFitted)
		}
		values, err := oe.tokens(out, column)
		if err != nil {
			return nil, err
		}
		codes, err := le.Transform(values)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", column, err)
		}
		if out, err = out.WithInts(column, codes); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (oe *OrdinalEncoder) FitTransform(ds *data.Dataset) (*data.Dataset, error) {
	if err := oe.Fit(ds); err != nil {
		return nil, err
	}
	return oe.Transform(ds)
}
