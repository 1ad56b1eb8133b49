package data

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
)

type Kind int

const (
	Numeric Kind = iota
	Categorical
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Boolean:
		return "boolean"
	default:
		return "categorical"
	}
}

// Dataset is an immutable table addressed by column name. Every method that
// changes the table returns a new Dataset; row order is preserved, so row i of
// a derived Dataset is row i of its parent unless Rows was used.
type Dataset struct {
	df dataframe.DataFrame
}

type ColumnCount struct {
	Name  string
	Count int
}

func newDataset(df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	return &Dataset{df: df}, nil
}

// FromRecords builds a Dataset from a header row followed by data rows,
// applying the same type detection and missing-value tokens as Load.
func FromRecords(records [][]string) (*Dataset, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient data: need a header and at least one row")
	}
	return newDataset(dataframe.LoadRecords(records, loadOptions()...))
}

func (d *Dataset) Len() int {
	return d.df.Nrow()
}

func (d *Dataset) Names() []string {
	return d.df.Names()
}

func (d *Dataset) Has(name string) bool {
	for _, n := range d.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func (d *Dataset) column(op, name string) (series.Series, error) {
	if !d.Has(name) {
		return series.Series{}, NewColumnNotFoundError(op, name)
	}
	return d.df.Col(name), nil
}

func (d *Dataset) Kind(name string) (Kind, error) {
	col, err := d.column("kind", name)
	if err != nil {
		return Categorical, err
	}
	return kindOf(col.Type()), nil
}

func kindOf(t series.Type) Kind {
	switch t {
	case series.Int, series.Float:
		return Numeric
	case series.Bool:
		return Boolean
	default:
		return Categorical
	}
}

func isMissing(e series.Element) bool {
	if e.IsNA() {
		return true
	}
	if e.Type() == series.Float && math.IsNaN(e.Float()) {
		return true
	}
	return false
}

// Missing reports, per row, whether the named column has no value.
func (d *Dataset) Missing(name string) ([]bool, error) {
	col, err := d.column("missing", name)
	if err != nil {
		return nil, err
	}
	out := make([]bool, col.Len())
	for i := range out {
		out[i] = isMissing(col.Elem(i))
	}
	return out, nil
}

func (d *Dataset) MissingCounts() []ColumnCount {
	names := d.df.Names()
	counts := make([]ColumnCount, len(names))
	for j, name := range names {
		col := d.df.Col(name)
		n := 0
		for i := 0; i < col.Len(); i++ {
			if isMissing(col.Elem(i)) {
				n++
			}
		}
		counts[j] = ColumnCount{Name: name, Count: n}
	}
	return counts
}

func (d *Dataset) TotalMissing() int {
	total := 0
	for _, c := range d.MissingCounts() {
		total += c.Count
	}
	return total
}

// Floats returns a numeric or boolean column as float64 with NaN for
// missing entries.
func (d *Dataset) Floats(name string) ([]float64, error) {
	col, err := d.column("floats", name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, col.Len())
	if kindOf(col.Type()) == Categorical {
		// A column with no observed values has no detectable type.
		for i := range out {
			if !isMissing(col.Elem(i)) {
				return nil, NewNotNumericError("floats", name)
			}
			out[i] = math.NaN()
		}
		return out, nil
	}

	for i := range out {
		e := col.Elem(i)
		if isMissing(e) {
			out[i] = math.NaN()
			continue
		}
		out[i] = e.Float()
	}
	return out, nil
}

// Strings returns the textual form of every entry together with a missing
// mask. Missing entries have an empty string.
func (d *Dataset) Strings(name string) ([]string, []bool, error) {
	col, err := d.column("strings", name)
	if err != nil {
		return nil, nil, err
	}

	values := make([]string, col.Len())
	missing := make([]bool, col.Len())
	for i := range values {
		e := col.Elem(i)
		if isMissing(e) {
			missing[i] = true
			continue
		}
		values[i] = formatElement(e)
	}
	return values, missing, nil
}

func formatElement(e series.Element) string {
	switch e.Type() {
	case series.Float:
		return strconv.FormatFloat(e.Float(), 'f', -1, 64)
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return e.String()
		}
		return strconv.Itoa(v)
	case series.Bool:
		v, err := e.Bool()
		if err != nil {
			return e.String()
		}
		return strconv.FormatBool(v)
	default:
		return e.String()
	}
}

// NumericColumns lists numeric columns in table order, skipping excluded names.
func (d *Dataset) NumericColumns(exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	var out []string
	for i, t := range d.df.Types() {
		name := d.df.Names()[i]
		if kindOf(t) == Numeric && !skip[name] {
			out = append(out, name)
		}
	}
	return out
}

func (d *Dataset) with(s series.Series) (*Dataset, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Len() != d.Len() {
		return nil, &ColumnError{
			Op:      "mutate",
			Column:  s.Name,
			Message: fmt.Sprintf("expected %d values, got %d", d.Len(), s.Len()),
			Cause:   ErrLengthMismatch,
		}
	}
	return newDataset(d.df.Mutate(s))
}

// WithFloats replaces the named column, or appends it when absent. NaN marks
// a missing value.
func (d *Dataset) WithFloats(name string, values []float64) (*Dataset, error) {
	return d.with(series.New(values, series.Float, name))
}

func (d *Dataset) WithInts(name string, values []int) (*Dataset, error) {
	return d.with(series.New(values, series.Int, name))
}

func (d *Dataset) WithBools(name string, values []bool) (*Dataset, error) {
	return d.with(series.New(values, series.Bool, name))
}

// WithStrings replaces or appends a categorical column. missing may be nil.
func (d *Dataset) WithStrings(name string, values []string, missing []bool) (*Dataset, error) {
	if missing != nil && len(missing) != len(values) {
		return nil, &ColumnError{Op: "mutate", Column: name, Message: "mask length differs from values", Cause: ErrLengthMismatch}
	}

	raw := make([]string, len(values))
	for i, v := range values {
		if missing != nil && missing[i] {
			raw[i] = "NaN"
			continue
		}
		raw[i] = v
	}
	return d.with(series.New(raw, series.String, name))
}

// Drop removes the named columns. Every name must exist.
func (d *Dataset) Drop(names ...string) (*Dataset, error) {
	if len(names) == 0 {
		return d, nil
	}
	for _, name := range names {
		if !d.Has(name) {
			return nil, NewColumnNotFoundError("drop", name)
		}
	}
	return newDataset(d.df.Drop(names))
}

// Select keeps only the named columns, in the given order.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	for _, name := range names {
		if !d.Has(name) {
			return nil, NewColumnNotFoundError("select", name)
		}
	}
	return newDataset(d.df.Select(names))
}

// Rows returns the rows at the given positions. Positions may repeat.
func (d *Dataset) Rows(idx []int) (*Dataset, error) {
	if len(idx) == 0 {
		return nil, ErrEmptySelection
	}
	for _, i := range idx {
		if i < 0 || i >= d.Len() {
			return nil, fmt.Errorf("row index %d out of range [0,%d)", i, d.Len())
		}
	}
	return newDataset(d.df.Subset(idx))
}

// DropMissing removes every row where the named column is missing and
// returns the number of removed rows.
func (d *Dataset) DropMissing(name string) (*Dataset, int, error) {
	missing, err := d.Missing(name)
	if err != nil {
		return nil, 0, err
	}
	keep := make([]int, 0, len(missing))
	for i, m := range missing {
		if !m {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(missing) {
		return d, 0, nil
	}
	out, err := d.Rows(keep)
	if err != nil {
		return nil, 0, err
	}
	return out, len(missing) - len(keep), nil
}

// DropIncomplete removes every row that has a missing value in any column.
func (d *Dataset) DropIncomplete() (*Dataset, int, error) {
	keep := make([]bool, d.Len())
	for i := range keep {
		keep[i] = true
	}
	for _, name := range d.Names() {
		missing, err := d.Missing(name)
		if err != nil {
			return nil, 0, err
		}
		for i, m := range missing {
			if m {
				keep[i] = false
			}
		}
	}

	idx := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	if len(idx) == d.Len() {
		return d, 0, nil
	}
	out, err := d.Rows(idx)
	if err != nil {
		return nil, 0, err
	}
	return out, d.Len() - len(idx), nil
}

// FloatMatrix returns the named columns as a row-major float matrix.
// Missing values are rejected.
func (d *Dataset) FloatMatrix(cols []string) ([][]float64, error) {
	X := make([][]float64, d.Len())
	for i := range X {
		X[i] = make([]float64, len(cols))
	}
	for j, name := range cols {
		values, err := d.Floats(name)
		if err != nil {
			return nil, err
		}
		missing := 0
		for i, v := range values {
			if math.IsNaN(v) {
				missing++
				continue
			}
			X[i][j] = v
		}
		if missing > 0 {
			return nil, NewMissingValuesError("matrix", name, missing)
		}
	}
	return X, nil
}

// Matrix returns the named columns as decimal feature rows.
func (d *Dataset) Matrix(cols []string) ([][]decimal.Decimal, error) {
	fx, err := d.FloatMatrix(cols)
	if err != nil {
		return nil, err
	}
	X := make([][]decimal.Decimal, len(fx))
	for i, row := range fx {
		X[i] = make([]decimal.Decimal, len(row))
		for j, v := range row {
			X[i][j] = decimal.NewFromFloat(v)
		}
	}
	return X, nil
}

// Labels returns an integer-valued column such as the survival target.
func (d *Dataset) Labels(name string) ([]int, error) {
	values, err := d.Floats(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(values))
	missing := 0
	for i, v := range values {
		if math.IsNaN(v) {
			missing++
			continue
		}
		if v != math.Trunc(v) {
			return nil, &ColumnError{Op: "labels", Column: name, Message: fmt.Sprintf("non-integer label %g at row %d", v, i)}
		}
		out[i] = int(v)
	}
	if missing > 0 {
		return nil, NewMissingValuesError("labels", name, missing)
	}
	return out, nil
}

// Row returns the textual values of row i keyed by column name.
func (d *Dataset) Row(i int) (map[string]string, error) {
	if i < 0 || i >= d.Len() {
		return nil, fmt.Errorf("row index %d out of range [0,%d)", i, d.Len())
	}
	out := make(map[string]string, d.df.Ncol())
	for _, name := range d.df.Names() {
		e := d.df.Col(name).Elem(i)
		if isMissing(e) {
			out[name] = ""
			continue
		}
		out[name] = formatElement(e)
	}
	return out, nil
}
