package data

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

func (dv *DataValidator) ValidateDataset(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return fmt.Errorf("features cannot be empty")
	}

	for i, sample := range X {
		if len(sample) != nFeatures {
			return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(sample))
		}
	}

	return nil
}

func (dv *DataValidator) ValidateLabels(y []int) error {
	if len(y) == 0 {
		return fmt.Errorf("labels are empty")
	}

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	if len(classCount) < 2 {
		return fmt.Errorf("dataset must have at least 2 classes, found %d", len(classCount))
	}

	return nil
}

func (dv *DataValidator) ValidateTrainTestSplit(XTrain, XTest [][]decimal.Decimal, yTrain, yTest []int) error {
	if err := dv.ValidateDataset(XTrain, yTrain); err != nil {
		return fmt.Errorf("training set validation failed: %w", err)
	}

	if err := dv.ValidateDataset(XTest, yTest); err != nil {
		return fmt.Errorf("test set validation failed: %w", err)
	}

	if len(XTrain[0]) != len(XTest[0]) {
		return fmt.Errorf("train and test sets have different feature counts: %d vs %d", len(XTrain[0]), len(XTest[0]))
	}

	return nil
}

// ColumnSummary is one line of a dataset description.
type ColumnSummary struct {
	Name     string
	Kind     Kind
	NonNull  int
	Missing  int
	Distinct int
	Min      decimal.Decimal
	Max      decimal.Decimal
	Mean     decimal.Decimal
}

// Describe summarises every column: observed and missing counts, and for
// numeric columns min, max and mean over observed values.
func (dv *DataValidator) Describe(ds *Dataset) []ColumnSummary {
	names := ds.Names()
	out := make([]ColumnSummary, 0, len(names))

	for _, name := range names {
		kind, _ := ds.Kind(name)
		summary := ColumnSummary{Name: name, Kind: kind}

		values, missing, _ := ds.Strings(name)
		distinct := make(map[string]bool)
		for i, v := range values {
			if missing[i] {
				summary.Missing++
				continue
			}
			summary.NonNull++
			distinct[v] = true
		}
		summary.Distinct = len(distinct)

		if kind == Numeric {
			floats, _ := ds.Floats(name)
			observed := make([]decimal.Decimal, 0, len(floats))
			for _, v := range floats {
				if !math.IsNaN(v) {
					observed = append(observed, decimal.NewFromFloat(v))
				}
			}
			summary.Min = findMin(observed)
			summary.Max = findMax(observed)
			summary.Mean = calculateMean(observed)
		}

		out = append(out, summary)
	}

	return out
}

func findMin(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	min := values[0]
	for _, v := range values[1:] {
		if v.LessThan(min) {
			min = v
		}
	}
	return min
}

func findMax(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	max := values[0]
	for _, v := range values[1:] {
		if v.GreaterThan(max) {
			max = v
		}
	}
	return max
}

func calculateMean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}
