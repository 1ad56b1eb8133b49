package models

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

type Model interface {
	Fit(X [][]decimal.Decimal, y []int) error
	Predict(X [][]decimal.Decimal) []int
	PredictProba(X [][]decimal.Decimal) [][]decimal.Decimal
	GetType() string
	GetName() string
	GetParams() map[string]any
	GetClasses() []int
	Reset()
}

var ErrEmptyTrainingSet = errors.New("training set is empty")

type BaseModel struct {
	Name    string
	Params  map[string]any
	Classes []int
}

func (bm *BaseModel) GetType() string {
	return bm.Name
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

// ExtractClasses returns the distinct labels in ascending order.
func ExtractClasses(y []int) []int {
	classMap := make(map[int]bool)
	for _, label := range y {
		classMap[label] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes
}

// BalancedWeights gives every sample of class c the weight n / (k * n_c),
// so each class carries the same total weight.
func BalancedWeights(y []int) []float64 {
	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}

	n := float64(len(y))
	k := float64(len(counts))
	weights := make([]float64, len(y))
	for i, label := range y {
		weights[i] = n / (k * float64(counts[label]))
	}
	return weights
}

func validateTrainingSet(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return errors.New("feature matrix and labels have different lengths")
	}
	if len(X[0]) == 0 {
		return errors.New("features cannot be empty")
	}
	return nil
}
